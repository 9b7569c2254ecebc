package user_test

import (
	"context"
	"log"
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visado/backend/core"
	"github.com/visado/backend/core/user"
	emailsvc "github.com/visado/backend/services/email"
	logsvc "github.com/visado/backend/services/logger"
	dummydb "github.com/visado/backend/storage/database/dummy"
)

func newTestService(t *testing.T) (user.Service, user.Repository) {
	t.Helper()

	conf := &core.Config{
		AppName:                   "Visado",
		TestMode:                  true,
		SecretKey:                 []byte("secret"),
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Name: "Visado", Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		WorkDir:                   core.Getwd(),
	}
	user.Init(conf)
	core.ParseEmailTemplates(conf, logsvc.NewStdLogger(log.New(os.Stdout, "", 0)))

	db, err := dummydb.Open()
	require.NoError(t, err)

	repo := dummydb.NewUserRepository(db)
	return user.NewServiceMock(repo, emailsvc.NewConsoleServiceMock(conf), conf), repo
}

func lastMessage(t *testing.T) *core.EmailMessage {
	t.Helper()
	require.NotEmpty(t, emailsvc.SentMessages)
	return &emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
}

func TestServiceCreate(t *testing.T) {
	svc, _ := newTestService(t)
	emailsvc.ClearSentMessages()
	ctx := context.Background()

	client, err := svc.Create(ctx, user.NewUser{
		Name:            "A Client",
		Username:        "aclient",
		Email:           "client@test.test",
		Password:        "!PassWord#2020",
		PasswordConfirm: "!PassWord#2020",
		Roles:           []string{user.RoleClient},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.True(t, client.Active())

	// clients get a welcome email
	msg := lastMessage(t)
	assert.Equal(t, "welcome", msg.TemplateName)
	assert.Equal(t, client.Email, msg.To[0].Address)

	// client admins get an invite with a password-reset link
	admin, err := svc.Create(ctx, user.NewUser{
		Name:            "C Admin",
		Username:        "acadmin",
		Email:           "cadmin@test.test",
		Password:        "!PassWord#2020",
		PasswordConfirm: "!PassWord#2020",
		Roles:           []string{user.RoleClientAdmin},
	})
	require.NoError(t, err)

	msg = lastMessage(t)
	assert.Equal(t, "admin-invite", msg.TemplateName)
	assert.Equal(t, admin.Email, msg.To[0].Address)
	assert.Contains(t, msg.TextContent, user.EncodeUID(admin))
}

func TestServiceCheckUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:            "A Client",
		Username:        "aclient",
		Email:           "client@test.test",
		Password:        "!PassWord#2020",
		PasswordConfirm: "!PassWord#2020",
		Roles:           []string{user.RoleClient},
	})
	require.NoError(t, err)

	err = svc.CheckUniqueness("aclient", "other@test.test")
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "username", vErr.Fields[0].Field)

	err = svc.CheckUniqueness("othername", "client@test.test")
	require.Error(t, err)
	vErr, ok = err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "email", vErr.Fields[0].Field)

	// the user themselves is excluded
	assert.NoError(t, svc.CheckUniqueness("aclient", "client@test.test", usr))
}

func TestServiceAssignClient(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	newUser := func(name, uname string, roles []string) user.User {
		usr := user.User{Name: name, Username: uname, Email: uname + "@test.test", Roles: roles}
		usr.SetActive(true)
		usr, err := repo.CreateUser(ctx, usr)
		require.NoError(t, err)
		return usr
	}
	admin := newUser("C Admin", "acadmin", []string{user.RoleClientAdmin})
	client := newUser("A Client", "aclient", []string{user.RoleClient})
	other := newUser("Other Client", "otherclient", []string{user.RoleClient})

	emailsvc.ClearSentMessages()
	require.NoError(t, svc.AssignClient(ctx, user.NewAssignment{AdminID: admin.ID, ClientID: client.ID}))

	// admin is notified
	msg := lastMessage(t)
	assert.Equal(t, "client-assigned", msg.TemplateName)
	assert.Equal(t, admin.Email, msg.To[0].Address)

	clients, err := svc.QueryAssignedClients(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)

	// re-assigning is rejected
	err = svc.AssignClient(ctx, user.NewAssignment{AdminID: admin.ID, ClientID: client.ID})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	// both sides must hold the expected role
	err = svc.AssignClient(ctx, user.NewAssignment{AdminID: client.ID, ClientID: other.ID})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	err = svc.AssignClient(ctx, user.NewAssignment{AdminID: admin.ID, ClientID: admin.ID})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestServiceResetPassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	usr := user.User{Name: "Forgetful", Username: "forgetful", Email: "forgetful@test.test", Roles: []string{user.RoleClient}}
	usr.SetActive(true)
	require.NoError(t, usr.SetPassword("OldPassword#1"))
	usr, err := repo.CreateUser(ctx, usr)
	require.NoError(t, err)

	// a valid link resets the password
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             user.EncodeUID(usr),
		Token:           user.MakeToken(usr),
		Password:        "NewPassword#2",
		PasswordConfirm: "NewPassword#2",
	})
	require.NoError(t, err)

	refreshed, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("NewPassword#2"))
	assert.Error(t, refreshed.CheckPassword("OldPassword#1"))

	// the token is single-use: it was bound to the old password hash
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             user.EncodeUID(usr),
		Token:           user.MakeToken(usr),
		Password:        "YetAnother#3",
		PasswordConfirm: "YetAnother#3",
	})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)

	// garbage uid
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             "garbage",
		Token:           "garbage-token",
		Password:        "NewPassword#2",
		PasswordConfirm: "NewPassword#2",
	})
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}
