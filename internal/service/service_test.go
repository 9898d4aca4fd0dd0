package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository/repotest"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[tokenID] = expiresAt
	return nil
}

type fixture struct {
	store   *repotest.Store
	auth    *AuthService
	tickets *TicketService
	revoker *fakeRevoker
	audit   *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	core, logs := observer.New(zapcore.InfoLevel)
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	revoker := &fakeRevoker{}
	authSvc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}, AuthDependencies{
		UserRepo:   store.Users(),
		Sessions:   revoker,
		Dispatcher: dispatcher,
	})
	ticketSvc := NewTicketService(TicketDependencies{
		TicketRepo:  store.Tickets(),
		HistoryRepo: store.History(),
		Dispatcher:  dispatcher,
	})
	return &fixture{store: store, auth: authSvc, tickets: ticketSvc, revoker: revoker, audit: logs}
}

func (f *fixture) register(t *testing.T, username, password string, role domain.Role) domain.Identity {
	t.Helper()
	identity, err := f.auth.Register(context.Background(), username, password, role)
	require.NoError(t, err)
	return identity
}

func auditActions(logs *observer.ObservedLogs) []string {
	var actions []string
	for _, entry := range logs.All() {
		actions = append(actions, entry.ContextMap()["action"].(string))
	}
	return actions
}

func TestRegisterThenAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, role := range domain.Roles {
		username := "user" + strings.ToLower(string(role))
		registered := f.register(t, username, "secret1", role)

		identity, err := f.auth.Authenticate(ctx, username, "secret1")
		require.NoError(t, err)
		assert.Equal(t, registered.UserID, identity.UserID)
		assert.Equal(t, role, identity.Role)
	}
}

func TestRegisterDuplicateLeavesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := f.register(t, "alice123", "pass123", domain.RoleEmployee)

	_, err := f.auth.Register(ctx, "alice123", "other456", domain.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)

	identity, err := f.auth.Authenticate(ctx, "alice123", "pass123")
	require.NoError(t, err)
	assert.Equal(t, original, identity)

	_, err = f.auth.Authenticate(ctx, "alice123", "other456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	f := newFixture(t)
	const attempts = 8

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Register(context.Background(), "racer1", "pass123", domain.RoleEmployee)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)
	}
	assert.Equal(t, 1, succeeded)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name     string
		username string
		password string
		role     domain.Role
	}{
		{"short username", "bob", "pass123", domain.RoleEmployee},
		{"username with space", "bob smith", "pass123", domain.RoleEmployee},
		{"weak password", "bobsmith", "password", domain.RoleEmployee},
		{"short password", "bobsmith", "a1", domain.RoleEmployee},
		{"unknown role", "bobsmith", "pass123", domain.Role("Manager")},
		{"lowercase role", "bobsmith", "pass123", domain.Role("admin")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tt.username, tt.password, tt.role)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice123", "pass123", domain.RoleEmployee)

	_, unknownErr := f.auth.Authenticate(ctx, "nobody1", "pass123")
	_, wrongErr := f.auth.Authenticate(ctx, "alice123", "pass124")

	assert.ErrorIs(t, unknownErr, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, apperrors.ToDomainError(unknownErr).Details, apperrors.ToDomainError(wrongErr).Details)

	stored, err := f.store.Users().GetByUsername(ctx, "alice123")
	require.NoError(t, err)
	assert.NotEqual(t, "pass123", stored.PasswordHash)
	assert.NotEqual(t, "pass124", stored.PasswordHash)
}

func TestLoginIssuesTokenAndLogoutRevokes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice123", "pass123", domain.RoleEmployee)

	identity, token, err := f.auth.Login(ctx, "alice123", "pass123")
	require.NoError(t, err)

	claims, err := f.auth.TokenManager().ParseToken(token.Token)
	require.NoError(t, err)
	subject, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, subject)
	assert.Equal(t, identity.Role, claims.Role)

	principal := &auth.Principal{Identity: identity, TokenID: token.ID, ExpiresAt: token.ExpiresAt}
	require.NoError(t, f.auth.Logout(ctx, principal))
	assert.Contains(t, f.revoker.revoked, token.ID)

	assert.ErrorIs(t, f.auth.Logout(ctx, nil), apperrors.ErrUnauthorized)
}

func TestCreateThenListOwnedBy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice123", "pass123", domain.RoleEmployee)
	bob := f.register(t, "bob12345", "pass123", domain.RoleEmployee)

	first, err := f.tickets.Create(ctx, alice, TicketCreateInput{Category: "Network", Description: "No wifi", Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, first.Status)
	_, err = f.tickets.Create(ctx, bob, TicketCreateInput{Category: "Hardware", Description: "Mouse", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)
	second, err := f.tickets.Create(ctx, alice, TicketCreateInput{Category: "Software", Description: "IDE", Priority: domain.TicketPriorityMedium})
	require.NoError(t, err)

	mine, err := f.tickets.ListOwnedBy(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)
	for _, ticket := range mine {
		assert.Equal(t, alice.UserID, ticket.OwnerID)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	}

	carol := f.register(t, "carol123", "pass123", domain.RoleEmployee)
	none, err := f.tickets.ListOwnedBy(ctx, carol)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice123", "pass123", domain.RoleEmployee)

	_, err := f.tickets.Create(ctx, alice, TicketCreateInput{Category: " ", Description: "x", Priority: domain.TicketPriorityLow})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.tickets.Create(ctx, alice, TicketCreateInput{Category: "x", Description: "", Priority: domain.TicketPriorityLow})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.tickets.Create(ctx, alice, TicketCreateInput{Category: "x", Description: "y", Priority: "Urgent"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	ghost := domain.Identity{UserID: 999, Username: "ghost", Role: domain.RoleEmployee}
	_, err = f.tickets.Create(ctx, ghost, TicketCreateInput{Category: "x", Description: "y", Priority: domain.TicketPriorityLow})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	stranger := domain.Identity{UserID: alice.UserID, Role: "Root"}
	_, err = f.tickets.Create(ctx, stranger, TicketCreateInput{Category: "x", Description: "y", Priority: domain.TicketPriorityLow})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice123", "pass123", domain.RoleEmployee)
	ticket, err := f.tickets.Create(ctx, alice, TicketCreateInput{Category: "Network", Description: "No wifi", Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)

	_, err = f.tickets.UpdateStatus(ctx, alice, ticket.ID, domain.TicketStatusClosed)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// authorization is decided before the status or ticket are looked at
	_, err = f.tickets.UpdateStatus(ctx, alice, 999, "Bogus")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	stored, err := f.store.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestUpdateStatusValidationAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin1", "admin123", domain.RoleAdmin)
	ticket, err := f.tickets.Create(ctx, admin, TicketCreateInput{Category: "Access", Description: "Badge", Priority: domain.TicketPriorityLow})
	require.NoError(t, err)

	_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, "Resolved")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.tickets.UpdateStatus(ctx, admin, 999, "Resolved")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.tickets.UpdateStatus(ctx, admin, 999, domain.TicketStatusClosed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := f.tickets.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
}

func TestAdminOnlyReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice123", "pass123", domain.RoleEmployee)

	_, err := f.tickets.ListAll(ctx, alice)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.tickets.Statistics(ctx, alice)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.tickets.ListHistory(ctx, alice, 1)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.tickets.ExportCSV(ctx, alice, &bytes.Buffer{}, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestStatisticsSumInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin1", "admin123", domain.RoleAdmin)
	statuses := []domain.TicketStatus{
		domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed,
		domain.TicketStatusClosed, domain.TicketStatusInProgress,
	}
	for _, status := range statuses {
		ticket, err := f.tickets.Create(ctx, admin, TicketCreateInput{Category: "c", Description: "d", Priority: domain.TicketPriorityMedium})
		require.NoError(t, err)
		_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, status)
		require.NoError(t, err)
	}

	stats, err := f.tickets.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStats{Total: 5, Open: 1, InProgress: 2, Closed: 2}, stats)
	assert.Equal(t, stats.Total, stats.Open+stats.InProgress+stats.Closed)
}

func TestListAllFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin1", "admin123", domain.RoleAdmin)
	for _, status := range []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusClosed, domain.TicketStatusInProgress} {
		ticket, err := f.tickets.Create(ctx, admin, TicketCreateInput{Category: "c", Description: "d", Priority: domain.TicketPriorityLow})
		require.NoError(t, err)
		_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, status)
		require.NoError(t, err)
	}

	all, err := f.tickets.ListAll(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	closed, err := f.tickets.ListAll(ctx, admin, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, domain.TicketID(2), closed[0].ID)

	active, err := f.tickets.ListAll(ctx, admin, domain.TicketStatusOpen, domain.TicketStatusInProgress)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, domain.TicketID(1), active[0].ID)
	assert.Equal(t, domain.TicketID(3), active[1].ID)

	_, err = f.tickets.ListAll(ctx, admin, domain.TicketStatus("Resolved"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHistoryAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "admin1", "admin123", domain.RoleAdmin)
	ticket, err := f.tickets.Create(ctx, admin, TicketCreateInput{Category: "Network", Description: "No wifi", Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)

	_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	history, err := f.tickets.ListHistory(ctx, admin, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.TicketStatusOpen, history[0].OldStatus)
	assert.Equal(t, domain.TicketStatusClosed, history[1].NewStatus)
	assert.Equal(t, admin.UserID, history[1].ChangedBy)

	_, err = f.tickets.ListHistory(ctx, admin, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var buf bytes.Buffer
	rows, err := f.tickets.ExportCSV(ctx, admin, &buf, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Contains(t, buf.String(), "1,1,Network,No wifi,High,Closed")
}

func TestAliceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "alice123", "pass123", domain.RoleEmployee)
	_, err := f.auth.Register(ctx, "alice123", "pass123", domain.RoleEmployee)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)

	alice, err := f.auth.Authenticate(ctx, "alice123", "pass123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEmployee, alice.Role)

	ticket, err := f.tickets.Create(ctx, alice, TicketCreateInput{Category: "Network", Description: "No wifi", Priority: domain.TicketPriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)

	f.register(t, "admin1", "admin123", domain.RoleAdmin)
	admin, err := f.auth.Authenticate(ctx, "admin1", "admin123")
	require.NoError(t, err)

	_, err = f.tickets.UpdateStatus(ctx, admin, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	stats, err := f.tickets.Statistics(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Closed)
	assert.Equal(t, int64(0), stats.Open)

	assert.Equal(t, []string{
		"user_registered",
		"login_succeeded",
		"ticket_created",
		"user_registered",
		"login_succeeded",
		"ticket_status_changed",
	}, auditActions(f.audit))
}

func TestAuditNeverLogsSecrets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice123", "pass123", domain.RoleEmployee)
	_, _ = f.auth.Authenticate(ctx, "alice123", "wrong999")

	stored, err := f.store.Users().GetByUsername(ctx, "alice123")
	require.NoError(t, err)
	for _, entry := range f.audit.All() {
		for _, value := range entry.ContextMap() {
			if s, ok := value.(string); ok {
				assert.NotEqual(t, "pass123", s)
				assert.NotEqual(t, "wrong999", s)
				assert.NotEqual(t, stored.PasswordHash, s)
			}
		}
	}
	assert.Equal(t, []string{"user_registered", "login_failed"}, auditActions(f.audit))
}
