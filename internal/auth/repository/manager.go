package repository

// Manager hands out repositories bound to a specific executor, so a service
// can run the same repository code against the pool or against an open
// transaction.
type Manager interface {
	Users(db DBTX) UserRepository
	Otps(db DBTX) OtpRepository
	Sessions(db DBTX) SessionRepository
	Audit(db DBTX) AuditRepository
	Agreements(db DBTX) AgreementRepository
}

type sqlManager struct{}

func NewManager() Manager {
	return &sqlManager{}
}

func (sqlManager) Users(db DBTX) UserRepository           { return NewUserRepository(db) }
func (sqlManager) Otps(db DBTX) OtpRepository             { return NewOtpRepository(db) }
func (sqlManager) Sessions(db DBTX) SessionRepository     { return NewSessionRepository(db) }
func (sqlManager) Audit(db DBTX) AuditRepository          { return NewAuditRepository(db) }
func (sqlManager) Agreements(db DBTX) AgreementRepository { return NewAgreementRepository(db) }
