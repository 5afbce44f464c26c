package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/discipulus-api/internal/models"
)

func TestCatalogSubjectsAreKnown(t *testing.T) {
	known := map[string]bool{}
	for _, s := range Subjects() {
		known[s.Name] = true
		assert.True(t, models.IsCategory(s.Category))
	}
	for _, teacher := range Teachers() {
		for _, subject := range teacher.Subjects {
			assert.True(t, known[subject], "%s teaches unknown subject %s", teacher.Name, subject)
		}
		for _, day := range teacher.Availability {
			assert.True(t, models.IsWeekdayName(day))
		}
	}
}

func TestDemoUsersHashPassword(t *testing.T) {
	users, err := DemoUsers(time.Now())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte(DemoPassword)))
	require.NotNil(t, users[1].TeacherID)
	assert.Equal(t, DemoTeacherID, *users[1].TeacherID)
}

func TestDemoClassesUpcomingIsNextMonday(t *testing.T) {
	monday := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	classes := DemoClasses(monday, time.UTC)

	assert.Equal(t, "2024-03-11", classes[0].Date)
	assert.Equal(t, models.ClassUpcoming, classes[0].Status)
	assert.Equal(t, models.ClassCompleted, classes[1].Status)
}
