package db

import (
	"time"

	"github.com/psyvr/exposure/internal/api"
	"github.com/psyvr/exposure/internal/services"
)

// SeedDemo inserts the demo practice if the store is empty: one superadmin,
// three therapists (one already licensed), four patients, the question bank
// and a month of session history.
func SeedDemo(store api.Store) error {
	existing, err := store.ListUsers()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()

	type account struct {
		id, username, password, role, name, therapistID string
	}
	accounts := []account{
		{"SA001", "superadmin", "admin123", "superadmin", "Системный Администратор", ""},
		{"TH001", "therapist", "therapy123", "therapist", "Др. Смирнова", ""},
		{"TH002", "doctor2", "doctor123", "therapist", "Др. Петров", ""},
		{"TH003", "licensed_doc", "license123", "therapist", "Др. Козлова", ""},
		{"PT001", "pt001234", "pass123", "patient", "Иван Петров", "TH001"},
		{"PT002", "pt002345", "pass123", "patient", "Мария Сидорова", "TH001"},
		{"PT003", "pt003456", "pass123", "patient", "Алексей Иванов", "TH002"},
		{"PT004", "pt004567", "pass123", "patient", "Елена Васильева", "TH003"},
	}
	for _, a := range accounts {
		hash, err := services.HashPassword(a.password)
		if err != nil {
			return err
		}
		err = store.AddUser(&api.User{
			ID:          a.id,
			Username:    a.username,
			PassHash:    hash,
			Role:        a.role,
			Name:        a.name,
			TherapistID: a.therapistID,
			IsActive:    true,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}
	}

	questions := []*api.TestQuestion{
		{
			ID:          "1",
			Text:        "Что такое контролируемая экспозиция в VR-терапии ПТСР?",
			Options:     []string{"Полное погружение в травмирующую ситуацию", "Постепенное воздействие на пациента в безопасной среде", "Избегание любых напоминаний о травме", "Медикаментозное лечение"},
			CorrectIdx:  1,
			Explanation: "Контролируемая экспозиция - это постепенное воздействие на пациента элементами травмирующей ситуации в безопасной контролируемой среде VR.",
			Category:    "theory",
		},
		{
			ID:          "2",
			Text:        "Что делать при резком повышении SUD (субъективной единицы дистресса) у пациента во время сессии?",
			Options:     []string{"Продолжить сессию", "Немедленно перейти к модулю \"Безопасное место\"", "Увеличить интенсивность стимулов", "Прервать сессию без последующих действий"},
			CorrectIdx:  1,
			Explanation: "При резком повышении SUD необходимо немедленно перевести пациента в безопасное место для стабилизации состояния.",
			Category:    "emergency",
		},
		{
			ID:          "3",
			Text:        "Какой частотный диапазон используется в EMDR-модуле?",
			Options:     []string{"0.1-0.5 Гц", "1-4 Гц", "5-10 Гц", "10-20 Гц"},
			CorrectIdx:  1,
			Explanation: "В EMDR-терапии используется частота 1-4 Гц для билатеральной стимуляции.",
			Category:    "technical",
		},
		{
			ID:          "4",
			Text:        "Что означает кнопка экстренной остановки?",
			Options:     []string{"Пауза сессии", "Перезагрузка системы", "Мгновенное прекращение всех стимулов", "Смена сцены"},
			CorrectIdx:  2,
			Explanation: "Кнопка экстренной остановки мгновенно прекращает все стимулы и переводит систему в безопасный режим.",
			Category:    "emergency",
		},
		{
			ID:          "5",
			Text:        "Как часто нужно обновлять лицензию терапевта VR-терапии?",
			Options:     []string{"Каждый месяц", "Каждые 6 месяцев", "Каждый год", "Каждые 2 года"},
			CorrectIdx:  2,
			Explanation: "Лицензия терапевта VR-терапии требует ежегодного обновления через прохождение тестирования.",
			Category:    "administrative",
		},
	}
	for _, q := range questions {
		if err := store.AddQuestion(q); err != nil {
			return err
		}
	}

	expires := now.Add(365 * 24 * time.Hour)
	licenses := []*api.TherapistLicense{
		{TherapistID: "TH001", LicenseType: "basic", CreatedAt: now},
		{TherapistID: "TH002", LicenseType: "basic", CreatedAt: now},
		{TherapistID: "TH003", LicenseType: "premium", IsActive: true, TestPassed: true, TestScore: 95, TestDate: &now, LicenseExpires: &expires, CreatedAt: now},
	}
	for _, l := range licenses {
		if err := store.PutLicense(l); err != nil {
			return err
		}
	}

	day := func(d, h, m int) time.Time { return time.Date(2024, 1, d, h, m, 0, 0, time.UTC) }
	sessions := []*api.TherapySession{
		{ID: "SES_PT001_1", PatientID: "PT001", Date: day(10, 10, 0), DurationMinutes: 30, ModuleUsed: "360° Экспозиция", PreSUD: 7, PostSUD: 4},
		{ID: "SES_PT001_2", PatientID: "PT001", Date: day(15, 11, 0), DurationMinutes: 35, ModuleUsed: "EMDR", PreSUD: 6, PostSUD: 3},
		{ID: "SES_PT001_3", PatientID: "PT001", Date: day(20, 9, 30), DurationMinutes: 40, ModuleUsed: "Безопасное место - Море", PreSUD: 5, PostSUD: 2},
		{ID: "SES_PT002_1", PatientID: "PT002", Date: day(12, 14, 0), DurationMinutes: 30, ModuleUsed: "360° Экспозиция", PreSUD: 8, PostSUD: 5},
		{ID: "SES_PT002_2", PatientID: "PT002", Date: day(18, 15, 0), DurationMinutes: 35, ModuleUsed: "Безопасное место - Лес", PreSUD: 7, PostSUD: 4},
		{ID: "SES_PT003_1", PatientID: "PT003", Date: day(14, 16, 0), DurationMinutes: 30, ModuleUsed: "EMDR", PreSUD: 6, PostSUD: 3},
		{ID: "SES_PT004_1", PatientID: "PT004", Date: day(16, 9, 0), DurationMinutes: 45, ModuleUsed: "360° Экспозиция", PreSUD: 6, PostSUD: 2},
		{ID: "SES_PT004_2", PatientID: "PT004", Date: day(23, 10, 0), DurationMinutes: 50, ModuleUsed: "EMDR", PreSUD: 5, PostSUD: 1},
		{ID: "SES_PT004_3", PatientID: "PT004", Date: day(30, 11, 0), DurationMinutes: 40, ModuleUsed: "Безопасное место - Горы", PreSUD: 4, PostSUD: 1},
	}
	for _, rec := range sessions {
		if err := store.AddSession(rec); err != nil {
			return err
		}
	}
	return nil
}
