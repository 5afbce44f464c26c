package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
	"github.com/noah-isme/discipulus-api/internal/repository/memory"
	"github.com/noah-isme/discipulus-api/internal/service"
)

// TeacherStore is implemented by both the postgres and in-memory teacher repositories.
type TeacherStore interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindProfile(ctx context.Context, id string) (*models.TeacherProfile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.TeacherProfile, error)
	CreateProfile(ctx context.Context, profile *models.TeacherProfile) error
	UpdateProfile(ctx context.Context, profile *models.TeacherProfile) error
}

type SubjectStore interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type ClassStore interface {
	Create(ctx context.Context, class *models.ScheduledClass) error
	FindByID(ctx context.Context, id string) (*models.ScheduledClass, error)
	FindByBookingKey(ctx context.Context, key string) (*models.ScheduledClass, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ScheduledClass, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduledClass, error)
	ListUpcomingByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.ScheduledClass, error)
	ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ScheduledClass, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ClassStatus, at time.Time) (bool, error)
	Reschedule(ctx context.Context, id, date, clock string, at time.Time) (bool, error)
}

type ConversationStore interface {
	FindByParticipants(ctx context.Context, userID, teacherID string) (*models.Conversation, error)
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	Create(ctx context.Context, conv *models.Conversation, greeting *models.Message) error
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type WalletStore interface {
	Get(ctx context.Context, teacherID string) (*models.Wallet, error)
	Create(ctx context.Context, teacherID string, at time.Time) error
	ListTransactions(ctx context.Context, teacherID string) ([]models.Transaction, error)
	Withdraw(ctx context.Context, txn *models.Transaction) (*models.Wallet, error)
	CreditEarning(ctx context.Context, txn *models.Transaction) error
	SettleWithdrawals(ctx context.Context, before time.Time) (int64, error)
}

// Stores groups the repositories selected by STORE_DRIVER.
type Stores struct {
	Teachers      TeacherStore
	Subjects      SubjectStore
	Classes       ClassStore
	Conversations ConversationStore
	Users         UserStore
	Sessions      SessionStore
	Wallets       WalletStore
	Drafts        service.DraftStore

	// DraftsExpire is true when the draft store evicts entries on its own.
	DraftsExpire bool
}

// MemoryStores builds seeded in-memory repositories.
func MemoryStores(now time.Time, loc *time.Location) (*Stores, error) {
	store, err := memory.NewSeededStore(now, loc)
	if err != nil {
		return nil, err
	}
	return &Stores{
		Teachers:      memory.NewTeacherRepository(store),
		Subjects:      memory.NewSubjectRepository(store),
		Classes:       memory.NewClassRepository(store),
		Conversations: memory.NewConversationRepository(store),
		Users:         memory.NewUserRepository(store),
		Sessions:      memory.NewSessionRepository(store),
		Wallets:       memory.NewWalletRepository(store),
		Drafts:        memory.NewDraftRepository(store),
	}, nil
}

// PostgresStores builds sqlx repositories. Drafts stay in memory until
// UseRedisDrafts swaps them out.
func PostgresStores(db *sqlx.DB) *Stores {
	return &Stores{
		Teachers:      repository.NewTeacherRepository(db),
		Subjects:      repository.NewSubjectRepository(db),
		Classes:       repository.NewClassRepository(db),
		Conversations: repository.NewConversationRepository(db),
		Users:         repository.NewUserRepository(db),
		Sessions:      repository.NewSessionRepository(db),
		Wallets:       repository.NewWalletRepository(db),
		Drafts:        memory.NewDraftRepository(memory.NewStore()),
	}
}

// UseRedisDrafts moves booking drafts to Redis, which expires them by TTL.
func (s *Stores) UseRedisDrafts(client *redis.Client) {
	s.Drafts = repository.NewDraftRepository(client)
	s.DraftsExpire = true
}
