package api

import (
	"github.com/psyvr/exposure/internal/services"
)

type licenseStoreAdapter struct {
	store Store
}

func newLicenseStoreAdapter(store Store) services.LicenseStore {
	return &licenseStoreAdapter{store: store}
}

func (a *licenseStoreAdapter) GetLicense(tid string) (*services.TherapistLicense, error) {
	l, err := a.store.GetLicense(tid)
	if err != nil || l == nil {
		return nil, err
	}
	return toServiceLicense(l), nil
}

func (a *licenseStoreAdapter) PutLicense(l *services.TherapistLicense) error {
	if l == nil {
		return services.NewInvalidError("license required")
	}
	return a.store.PutLicense(fromServiceLicense(l))
}

var _ services.LicenseStore = (*licenseStoreAdapter)(nil)

func toServiceLicense(l *TherapistLicense) *services.TherapistLicense {
	return &services.TherapistLicense{
		TherapistID:    l.TherapistID,
		LicenseType:    l.LicenseType,
		IsActive:       l.IsActive,
		TestPassed:     l.TestPassed,
		TestScore:      l.TestScore,
		TestDate:       l.TestDate,
		LicenseExpires: l.LicenseExpires,
		CreatedAt:      l.CreatedAt,
	}
}

func fromServiceLicense(l *services.TherapistLicense) *TherapistLicense {
	return &TherapistLicense{
		TherapistID:    l.TherapistID,
		LicenseType:    l.LicenseType,
		IsActive:       l.IsActive,
		TestPassed:     l.TestPassed,
		TestScore:      l.TestScore,
		TestDate:       l.TestDate,
		LicenseExpires: l.LicenseExpires,
		CreatedAt:      l.CreatedAt,
	}
}
