package api

type Store interface {
	AddUser(u *User) error
	GetUser(id string) (*User, error)
	FindUserByUsername(username string) (*User, error)
	ListUsers() ([]*User, error)
	ListPatientsByTherapist(tid string) ([]*User, error)
	SetUserActive(id string, active bool) (bool, error)
	SetUserPassword(id string, hash []byte) (bool, error)
	CountUsersByRole(role string) (int, error)

	GetLicense(tid string) (*TherapistLicense, error)
	PutLicense(l *TherapistLicense) error

	AddQuestion(q *TestQuestion) error
	ListQuestions(category string) ([]*TestQuestion, error)

	AddSession(rec *TherapySession) error
	ListSessionsByPatient(pid string) ([]*TherapySession, error)
	ListAllSessions() ([]*TherapySession, error)
}

var _ Store = (*memoryStore)(nil)
