// Package memory provides repository implementations backed by process memory.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/seed"
)

// Store holds every table of the in-memory driver behind one lock.
type Store struct {
	mu sync.RWMutex

	teachers      []models.TeacherProfile
	subjects      []models.Subject
	users         map[string]models.User
	sessions      map[string]models.Session
	classes       map[string]models.ScheduledClass
	conversations map[string]models.Conversation
	messages      map[string][]models.Message
	wallets       map[string]models.Wallet
	transactions  []models.Transaction
	drafts        map[string]models.BookingDraft
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		sessions:      make(map[string]models.Session),
		classes:       make(map[string]models.ScheduledClass),
		conversations: make(map[string]models.Conversation),
		messages:      make(map[string][]models.Message),
		wallets:       make(map[string]models.Wallet),
		drafts:        make(map[string]models.BookingDraft),
	}
}

// NewSeededStore returns a store loaded with the catalog and demo records.
func NewSeededStore(now time.Time, loc *time.Location) (*Store, error) {
	s := NewStore()
	s.teachers = seed.Profiles()
	s.subjects = seed.Subjects()

	users, err := seed.DemoUsers(now)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	for _, c := range seed.DemoClasses(now, loc) {
		s.classes[c.ID] = c
	}
	for _, w := range seed.DemoWallets(now) {
		s.wallets[w.TeacherID] = w
	}
	s.transactions = seed.DemoTransactions()
	return s, nil
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProfile(p models.TeacherProfile) models.TeacherProfile {
	p.Subjects = copyStrings(p.Subjects)
	p.Languages = copyStrings(p.Languages)
	p.Availability = copyStrings(p.Availability)
	p.Certifications = copyStrings(p.Certifications)
	return p
}

func sortClasses(classes []models.ScheduledClass) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Date != classes[j].Date {
			return classes[i].Date < classes[j].Date
		}
		return classes[i].Time < classes[j].Time
	})
}
