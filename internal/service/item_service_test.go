package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunnas32/QR-Stock/internal/dto"
	"github.com/gunnas32/QR-Stock/internal/model"
)

func TestCreateItem(t *testing.T) {
	f := newTxFixture(t)

	resp, err := f.items.Create(context.Background(), dto.CreateItemRequest{
		Name: "M6 bolts", AlertThreshold: 3, AlertRecipient: "shop@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Code, 8)
	assert.Equal(t, 0, resp.Quantity)
	assert.Equal(t, 3, resp.AlertThreshold)
	assert.Equal(t, "http://localhost:8000/scan?code="+resp.Code, resp.DeepLink)

	persisted := f.st.saved(resp.Code)
	require.NotNil(t, persisted)
	assert.Equal(t, "M6 bolts", persisted.Name)
}

func TestCreateItemExplicitCode(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()

	_, err := f.items.Create(ctx, dto.CreateItemRequest{Code: "shelf42a", Name: "rivets"})
	require.NoError(t, err)

	_, err = f.items.Create(ctx, dto.CreateItemRequest{Code: "shelf42a", Name: "other"})
	assert.ErrorIs(t, err, model.ErrDuplicateCode)
}

func TestCreateItemPersistFailure(t *testing.T) {
	f := newTxFixture(t)
	f.st.failWith(errors.New("disk full"))

	_, err := f.items.Create(context.Background(), dto.CreateItemRequest{Code: "abc12345", Name: "widget"})
	require.ErrorIs(t, err, model.ErrPersistence)

	_, err = f.reg.Get("abc12345")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateItemPartial(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "abc12345", "widget", 2)

	name := "widget, stainless"
	threshold := 4
	resp, err := f.items.Update(context.Background(), "abc12345", dto.UpdateItemRequest{
		Name: &name, AlertThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, "widget, stainless", resp.Name)
	assert.Equal(t, 4, resp.AlertThreshold)
	assert.Equal(t, 2, resp.Quantity, "metadata update must not touch quantity")

	// Clearing the recipient disables alerting without touching the rest.
	empty := ""
	resp, err = f.items.Update(context.Background(), "abc12345", dto.UpdateItemRequest{AlertRecipient: &empty})
	require.NoError(t, err)
	assert.Empty(t, resp.AlertRecipient)
	assert.Equal(t, 4, resp.AlertThreshold)
}

func TestUpdateItemNothingToDo(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "abc12345", "widget", 2)
	savesBefore := f.st.saves

	resp, err := f.items.Update(context.Background(), "abc12345", dto.UpdateItemRequest{})
	require.NoError(t, err)
	assert.Equal(t, "widget", resp.Name)
	assert.Equal(t, savesBefore, f.st.saves)
}

func TestRenameItem(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "old00001", "widget", 6)

	resp, err := f.items.Rename(context.Background(), "old00001", dto.RenameItemRequest{NewCode: "new00001"})
	require.NoError(t, err)
	assert.Equal(t, "new00001", resp.Code)
	assert.Equal(t, 6, resp.Quantity)
	assert.Equal(t, 1, f.st.renames)

	assert.Nil(t, f.st.saved("old00001"))
	require.NotNil(t, f.st.saved("new00001"))

	// Ledger entries follow the item to its new code.
	ledger, err := f.svc.ListForItem(context.Background(), "new00001", dto.LedgerFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, ledger.Data, 1)
	assert.Equal(t, "new00001", ledger.Data[0].ItemCode)
}

func TestRenameItemPersistFailure(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "old00001", "widget", 6)
	f.st.failWith(errors.New("disk full"))

	_, err := f.items.Rename(context.Background(), "old00001", dto.RenameItemRequest{NewCode: "new00001"})
	require.ErrorIs(t, err, model.ErrPersistence)

	got, err := f.reg.Get("old00001")
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)
}

func TestScanShowsRecentHistory(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "abc12345", "widget", 0)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := f.svc.Apply(ctx, "abc12345", dto.ApplyTransactionRequest{Kind: "in", Quantity: i})
		require.NoError(t, err)
	}

	resp, err := f.items.Scan(ctx, "abc12345")
	require.NoError(t, err)
	assert.Equal(t, 28, resp.Quantity)
	require.Len(t, resp.Recent, 5)
	assert.Equal(t, 7, resp.Recent[0].Quantity, "most recent entry first")
	assert.Equal(t, 3, resp.Recent[4].Quantity)
}

func TestListItemsOrderedByName(t *testing.T) {
	f := newTxFixture(t)
	ctx := context.Background()
	for i, name := range []string{"zinc plates", "Anchors", "m8 nuts"} {
		_, err := f.items.Create(ctx, dto.CreateItemRequest{Code: fmt.Sprintf("code000%d", i), Name: name})
		require.NoError(t, err)
	}

	resp, err := f.items.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "Anchors", resp.Data[0].Name)
	assert.Equal(t, "m8 nuts", resp.Data[1].Name)
	assert.Equal(t, "zinc plates", resp.Data[2].Name)
}

func TestGetItemIncludesHistoryTail(t *testing.T) {
	f := newTxFixture(t)
	f.seed(t, "abc12345", "widget", 3)

	resp, err := f.items.Get(context.Background(), "abc12345")
	require.NoError(t, err)
	require.Len(t, resp.History, 1)
	assert.Equal(t, "in", resp.History[0].Kind)
}
