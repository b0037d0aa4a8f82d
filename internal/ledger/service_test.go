package ledger

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/granary/granary/internal/shared"
)

type memStore struct {
	lots     []Lot
	inbound  []InboundMovement
	outbound []OutboundMovement
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, m)
}

func (m *memStore) GetLotForUpdate(ctx context.Context, id string) (Lot, error) {
	for _, lot := range m.lots {
		if lot.ID == id {
			return lot, nil
		}
	}
	return Lot{}, shared.ErrNotFound
}

func (m *memStore) ListLotsForUpdate(ctx context.Context, itemType string) ([]Lot, error) {
	var lots []Lot
	for _, lot := range m.lots {
		if lot.ItemType == itemType {
			lots = append(lots, lot)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].InboundDate.Equal(lots[j].InboundDate) {
			return lots[i].InboundDate.Before(lots[j].InboundDate)
		}
		return lots[i].CreateTime.Before(lots[j].CreateTime)
	})
	return lots, nil
}

func (m *memStore) InsertLot(ctx context.Context, lot Lot) error {
	m.lots = append(m.lots, lot)
	return nil
}

func (m *memStore) UpdateLotQuantity(ctx context.Context, id string, quantity int) error {
	for i := range m.lots {
		if m.lots[i].ID == id {
			m.lots[i].Quantity = quantity
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memStore) DeleteLot(ctx context.Context, id string) error {
	for i := range m.lots {
		if m.lots[i].ID == id {
			m.lots = append(m.lots[:i], m.lots[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memStore) InsertInbound(ctx context.Context, mv InboundMovement) (int64, error) {
	m.nextID++
	mv.ID = m.nextID
	m.inbound = append(m.inbound, mv)
	return mv.ID, nil
}

func (m *memStore) InsertOutbound(ctx context.Context, mv OutboundMovement) (int64, error) {
	m.nextID++
	mv.ID = m.nextID
	m.outbound = append(m.outbound, mv)
	return mv.ID, nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func (m *memStore) quantityOf(itemType string) int {
	total := 0
	for _, lot := range m.lots {
		if lot.ItemType == itemType {
			total += lot.Quantity
		}
	}
	return total
}

func TestInboundCreatesLotAndHistory(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	warn := 3
	expiry := day("2025-06-01")
	id, err := svc.Inbound(ctx, InboundInput{
		UserID:            7,
		ItemType:          "大米",
		Unit:              "kg",
		Quantity:          10,
		ExpiryDate:        &expiry,
		InboundDate:       day("2025-01-01"),
		ExpiryWarningDays: &warn,
		Tag:               "red",
		Location:          "A-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, store.lots, 1)
	require.Equal(t, id, store.lots[0].ID)
	require.Equal(t, 10, store.lots[0].Quantity)

	require.Len(t, store.inbound, 1)
	require.Equal(t, id, store.inbound[0].LotID)
	require.Equal(t, int64(7), store.inbound[0].UserID)
	require.Equal(t, "大米", store.inbound[0].ItemType)
	require.Equal(t, 10, store.inbound[0].Quantity)
}

func TestInboundValidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "  ", Quantity: 5, InboundDate: day("2025-01-01")})
	require.ErrorIs(t, err, ErrItemTypeRequired)

	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Quantity: 0, InboundDate: day("2025-01-01")})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Quantity: -2, InboundDate: day("2025-01-01")})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Quantity: 5})
	require.ErrorIs(t, err, ErrDateRequired)

	require.Empty(t, store.lots)
	require.Empty(t, store.inbound)
}

func TestOutboundByIDExactMatchDeletesLot(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	id, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "鸡蛋", Unit: "盒", Quantity: 5, InboundDate: day("2025-01-01"), Tag: "blue", Location: "B-2"})
	require.NoError(t, err)

	err = svc.OutboundByID(ctx, OutboundByIDInput{UserID: 2, LotID: id, Quantity: 5, OutboundDate: day("2025-02-01")})
	require.NoError(t, err)

	require.Empty(t, store.lots)
	require.Len(t, store.outbound, 1)
	require.Equal(t, 5, store.outbound[0].Quantity)
	require.Equal(t, "盒", store.outbound[0].Unit)
	require.Equal(t, "blue", store.outbound[0].Tag)
	require.Equal(t, "B-2", store.outbound[0].Location)
}

func TestOutboundByIDPartialMatchDecrements(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	id, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "鸡蛋", Quantity: 5, InboundDate: day("2025-01-01")})
	require.NoError(t, err)

	err = svc.OutboundByID(ctx, OutboundByIDInput{UserID: 2, LotID: id, Quantity: 2, OutboundDate: day("2025-02-01")})
	require.NoError(t, err)

	require.Len(t, store.lots, 1)
	require.Equal(t, 3, store.lots[0].Quantity)
	require.Len(t, store.outbound, 1)
	require.Equal(t, 2, store.outbound[0].Quantity)
}

func TestOutboundByIDOverRequestFails(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	id, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "鸡蛋", Quantity: 5, InboundDate: day("2025-01-01")})
	require.NoError(t, err)

	err = svc.OutboundByID(ctx, OutboundByIDInput{UserID: 2, LotID: id, Quantity: 6, OutboundDate: day("2025-02-01")})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 5, insufficient.Current)
	require.Contains(t, err.Error(), "5")

	require.Len(t, store.lots, 1)
	require.Equal(t, 5, store.lots[0].Quantity)
	require.Empty(t, store.outbound)
}

func TestOutboundByIDLotNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	err := svc.OutboundByID(context.Background(), OutboundByIDInput{UserID: 2, LotID: "missing", Quantity: 1, OutboundDate: day("2025-02-01")})
	require.ErrorIs(t, err, ErrLotNotFound)
}

func TestOutboundFIFODepletesOldestFirst(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	idA, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "大米", Quantity: 5, InboundDate: day("2025-01-01")})
	require.NoError(t, err)
	idB, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "大米", Quantity: 5, InboundDate: day("2025-01-05")})
	require.NoError(t, err)

	err = svc.OutboundFIFO(ctx, OutboundFIFOInput{UserID: 2, ItemType: "大米", Quantity: 7, OutboundDate: day("2025-02-01")})
	require.NoError(t, err)

	require.Len(t, store.lots, 1)
	require.Equal(t, idB, store.lots[0].ID)
	require.Equal(t, 3, store.lots[0].Quantity)
	for _, lot := range store.lots {
		require.NotEqual(t, idA, lot.ID)
	}

	require.Len(t, store.outbound, 1)
	require.Equal(t, 7, store.outbound[0].Quantity)
}

func TestOutboundFIFOCreateTimeBreaksTies(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	// Same inbound date, distinct creation instants.
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	instants := []time.Time{base, base.Add(time.Second)}
	i := 0
	svc.now = func() time.Time {
		t := instants[i%len(instants)]
		i++
		return t
	}

	first, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "肉", Quantity: 4, InboundDate: day("2025-03-01")})
	require.NoError(t, err)
	second, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "肉", Quantity: 4, InboundDate: day("2025-03-01")})
	require.NoError(t, err)

	err = svc.OutboundFIFO(ctx, OutboundFIFOInput{UserID: 2, ItemType: "肉", Quantity: 4, OutboundDate: day("2025-03-02")})
	require.NoError(t, err)

	require.Len(t, store.lots, 1)
	require.Equal(t, second, store.lots[0].ID)
	_, err = store.GetLotForUpdate(ctx, first)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOutboundFIFOInsufficientStockIsAtomic(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	_, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "大米", Quantity: 5, InboundDate: day("2025-01-01")})
	require.NoError(t, err)
	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "大米", Quantity: 3, InboundDate: day("2025-01-03")})
	require.NoError(t, err)

	err = svc.OutboundFIFO(ctx, OutboundFIFOInput{UserID: 2, ItemType: "大米", Quantity: 9, OutboundDate: day("2025-02-01")})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 8, insufficient.Current)

	require.Len(t, store.lots, 2)
	require.Equal(t, 8, store.quantityOf("大米"))
	require.Empty(t, store.outbound)
}

func TestOutboundFIFOEmptyStock(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)

	err := svc.OutboundFIFO(context.Background(), OutboundFIFOInput{UserID: 2, ItemType: "没有的", Quantity: 1, OutboundDate: day("2025-02-01")})
	require.ErrorIs(t, err, ErrEmptyStock)
	require.False(t, errors.As(err, new(*InsufficientStockError)))
}

func TestOutboundFIFOFieldProvenance(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	// Oldest lot has no tag or location, middle lot supplies the tag, the
	// newest supplies the location. Each field resolves independently.
	_, err := svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Unit: "桶", Quantity: 2, InboundDate: day("2025-01-01")})
	require.NoError(t, err)
	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Quantity: 2, InboundDate: day("2025-01-02"), Tag: "green"})
	require.NoError(t, err)
	_, err = svc.Inbound(ctx, InboundInput{UserID: 1, ItemType: "油", Quantity: 2, InboundDate: day("2025-01-03"), Location: "C-3"})
	require.NoError(t, err)

	err = svc.OutboundFIFO(ctx, OutboundFIFOInput{UserID: 2, ItemType: "油", Quantity: 3, OutboundDate: day("2025-02-01")})
	require.NoError(t, err)

	require.Len(t, store.outbound, 1)
	require.Equal(t, "桶", store.outbound[0].Unit)
	require.Equal(t, "green", store.outbound[0].Tag)
	require.Equal(t, "C-3", store.outbound[0].Location)
}

func TestConservation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	inboundTotal := 0
	for i, qty := range []int{5, 12, 3, 8} {
		_, err := svc.Inbound(ctx, InboundInput{
			UserID:      1,
			ItemType:    "大米",
			Quantity:    qty,
			InboundDate: day("2025-01-01").AddDate(0, 0, i),
		})
		require.NoError(t, err)
		inboundTotal += qty
	}

	outboundTotal := 0
	for _, qty := range []int{4, 9, 2} {
		err := svc.OutboundFIFO(ctx, OutboundFIFOInput{UserID: 2, ItemType: "大米", Quantity: qty, OutboundDate: day("2025-02-01")})
		require.NoError(t, err)
		outboundTotal += qty
	}

	require.Equal(t, inboundTotal-outboundTotal, store.quantityOf("大米"))

	historyIn, historyOut := 0, 0
	for _, m := range store.inbound {
		historyIn += m.Quantity
	}
	for _, m := range store.outbound {
		historyOut += m.Quantity
	}
	require.Equal(t, inboundTotal, historyIn)
	require.Equal(t, outboundTotal, historyOut)
}
