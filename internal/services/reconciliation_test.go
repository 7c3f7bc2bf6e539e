package services

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/database"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.NewConnection(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations())
	return db.DB
}

func createPendingTicket(t *testing.T, repo *repositories.TicketRepository, reference, intentID string) *models.Ticket {
	t.Helper()

	ticket, err := repo.Create(&models.Ticket{
		TransactionReference: reference,
		PaymentIntentID:      intentID,
		TicketType:           models.TicketIndividual,
		Amount:               decimal.NewFromInt(1500),
		Currency:             models.DefaultCurrency,
		Name:                 "Fatou Ceesay",
		Email:                "fatou@example.com",
		PaymentStatus:        models.PaymentPending,
	})
	require.NoError(t, err)
	return ticket
}

func TestReconcileGatewayCompleted(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	ticket, err := svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentCompleted,
		ChargeID:        "ch_1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, ticket.PaymentStatus)
	assert.Equal(t, "ch_1", ticket.GatewayChargeID)
}

func TestReconcileDuplicateDeliveryIsNoOp(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	var hookFires int32
	svc.OnCompleted(func(*models.Ticket) { atomic.AddInt32(&hookFires, 1) })

	event := models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentCompleted,
		ChargeID:        "ch_1",
	}

	first, err := svc.Reconcile(event)
	require.NoError(t, err)

	second, err := svc.Reconcile(event)
	require.NoError(t, err, "redelivery must not error")
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "redelivery must not touch the row")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookFires), "completion hook must fire exactly once")
}

func TestReconcileConflictingTerminalState(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	_, err := svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentCompleted,
		ChargeID:        "ch_1",
	})
	require.NoError(t, err)

	// A failed event for a ticket already completed is an observation, not
	// an overwrite
	_, err = svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_2",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentFailed,
	})
	var conflict *models.ConflictingStateError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, models.PaymentCompleted, conflict.Current)
	assert.Equal(t, models.PaymentFailed, conflict.Incoming)

	current, err := repo.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus, "recorded state must be kept")
}

func TestReconcileUnmatchedEvent(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)

	_, err := svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_unknown",
		Status:          models.PaymentCompleted,
	})
	assert.ErrorIs(t, err, models.ErrUnmatchedEvent)
}

func TestReconcileSkipsOrderEvents(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)

	ticket, err := svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_order",
		Status:          models.PaymentCompleted,
		Metadata:        map[string]string{"kind": "order"},
	})
	require.NoError(t, err)
	assert.Nil(t, ticket, "order events are acknowledged and skipped")

	ticket, err = svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_2",
		PaymentIntentID: "pi_order2",
		Status:          models.PaymentCompleted,
		Metadata:        map[string]string{"reference": "ORD-123"},
	})
	require.NoError(t, err)
	assert.Nil(t, ticket)
}

func TestReconcileRejectsNonTerminalStatus(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	_, err := svc.Reconcile(models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentPending,
	})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestReconcileManualIssuance(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	ticket, err := svc.Reconcile(models.ManualIssuance{
		TransactionReference: "TKT-1",
		IssuedBy:             42,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, ticket.PaymentStatus)

	// Re-issuing is a duplicate no-op, same as a webhook redelivery
	again, err := svc.Reconcile(models.ManualIssuance{
		TransactionReference: "TKT-1",
		IssuedBy:             42,
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.UpdatedAt, again.UpdatedAt)
}

func TestReconcileManualIssuanceUnmatched(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)

	_, err := svc.Reconcile(models.ManualIssuance{TransactionReference: "TKT-MISSING"})
	assert.ErrorIs(t, err, models.ErrUnmatchedEvent)
}

func TestReconcileConcurrentDuplicateDeliveries(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	var hookFires int32
	svc.OnCompleted(func(*models.Ticket) { atomic.AddInt32(&hookFires, 1) })

	event := models.GatewayPaymentEvent{
		EventID:         "evt_1",
		PaymentIntentID: "pi_1",
		Status:          models.PaymentCompleted,
		ChargeID:        "ch_1",
	}

	const deliveries = 10
	var wg sync.WaitGroup
	errs := make(chan error, deliveries)

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reconcile(event)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err, "every concurrent duplicate converges without error")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hookFires), "exactly one delivery wins the transition")

	current, err := repo.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, current.PaymentStatus)
}

func TestReconcileConcurrentConflictingDeliveries(t *testing.T) {
	repo := repositories.NewTicketRepository(setupTestDB(t))
	svc := NewReconciliationService(repo)
	createPendingTicket(t, repo, "TKT-1", "pi_1")

	statuses := []models.PaymentStatus{models.PaymentCompleted, models.PaymentFailed}
	var wg sync.WaitGroup
	for _, status := range statuses {
		wg.Add(1)
		go func(s models.PaymentStatus) {
			defer wg.Done()
			// One of the two wins; the loser observes a conflict. Either
			// way the errors are bounded to the conflict type.
			_, err := svc.Reconcile(models.GatewayPaymentEvent{
				EventID:         "evt_" + string(s),
				PaymentIntentID: "pi_1",
				Status:          s,
			})
			if err != nil {
				var conflict *models.ConflictingStateError
				assert.True(t, errors.As(err, &conflict), "unexpected error: %v", err)
			}
		}(status)
	}
	wg.Wait()

	current, err := repo.GetByTransactionReference("TKT-1")
	require.NoError(t, err)
	assert.True(t, current.PaymentStatus.IsTerminal(), "ticket must settle in one terminal state")
}
