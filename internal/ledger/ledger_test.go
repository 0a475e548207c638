package ledger

import (
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfidledger/m/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSeed() Seed {
	return Seed{
		Items: []domain.Item{
			{ID: "ITEM-001", SKU: "SKU-001", Name: "Torque wrench", ReorderPoint: 5},
			{ID: "ITEM-002", SKU: "SKU-002", Name: "Cable ties", ReorderPoint: 2},
			{ID: "ITEM-010", SKU: "SKU-010", Name: "Wipes", Category: domain.CategoryGen, ReorderPoint: 1},
			{ID: "FOOD-001", SKU: "SKU-F01", Name: "Ration pack", Category: domain.CategoryFood, PairedDisposalID: "TRASH-001"},
			{ID: "FOOD-002", SKU: "SKU-F02", Name: "Juice", Category: domain.CategoryFood, PairedDisposalID: "TRASH-404"},
			{ID: "TRASH-001", SKU: "SKU-T01", Name: "Ration wrapper", Category: domain.CategoryTrash},
		},
		Locations: []domain.Location{
			{ID: "LOC-A1", Code: "A1"},
			{ID: "LOC-R1", Code: "R1"},
			{ID: "LOC-GALLEY", Code: "GALLEY"},
			{ID: "LOC-DISPOSAL", Code: "DISP", Disposal: true},
		},
		Stocks: []domain.StockRow{
			{ItemID: "ITEM-001", LocationID: "LOC-A1", Qty: 1},
			{ItemID: "ITEM-002", LocationID: "LOC-R1", Qty: 3},
			{ItemID: "ITEM-010", LocationID: "LOC-A1", Qty: 4},
			{ItemID: "FOOD-001", LocationID: "LOC-GALLEY", Qty: 5},
			{ItemID: "FOOD-002", LocationID: "LOC-GALLEY", Qty: 2},
		},
		Tags: []domain.TagMapping{
			{CardHex: "A1B2C3", ItemID: "ITEM-001", LastLocationID: "LOC-A1"},
			{CardHex: "F00D01", ItemID: "FOOD-001", LastLocationID: "LOC-GALLEY"},
			{CardHex: "F00D02", ItemID: "FOOD-002", LastLocationID: "LOC-GALLEY"},
			{CardHex: "7A5H01", ItemID: "TRASH-001", LastLocationID: "LOC-GALLEY"},
			{CardHex: "6E6E01", ItemID: "ITEM-010", LastLocationID: "LOC-A1"},
		},
		Badges: []string{"BADGE01"},
	}
}

func newTestLedger(t *testing.T, opts Options) *Ledger {
	t.Helper()
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	l := New(opts)
	require.NoError(t, l.Load(testSeed()))
	return l
}

// assertTotals checks total == sum of rows and the derived status for every item.
func assertTotals(t *testing.T, l *Ledger) {
	t.Helper()
	sums := map[string]int64{}
	for _, r := range l.Stocks("") {
		assert.GreaterOrEqual(t, r.Qty, int64(0), "row %s@%s", r.ItemID, r.LocationID)
		sums[r.ItemID] += r.Qty
	}
	for _, item := range l.Items("") {
		assert.Equal(t, sums[item.ID], item.Total, "total of %s", item.ID)
		want := domain.StatusOK
		if item.Total <= item.ReorderPoint {
			want = domain.StatusRisk
		}
		assert.Equal(t, want, item.Status, "status of %s", item.ID)
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"a1b2c3", "A1B2C3"},
		{"0xa1b2c3", "A1B2C3"},
		{" 0XA1:B2:C3 ", "A1B2C3"},
		{"a1-b2 c3", "A1B2C3"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTag(tt.raw))
		})
	}
}

func TestLoad_RejectsBrokenReferences(t *testing.T) {
	seed := testSeed()
	seed.Stocks = append(seed.Stocks, domain.StockRow{ItemID: "NOPE", LocationID: "LOC-A1", Qty: 1})
	assert.Error(t, New(Options{}).Load(seed))

	seed = testSeed()
	seed.Tags = append(seed.Tags, domain.TagMapping{CardHex: "BADGE01", ItemID: "ITEM-001", LastLocationID: "LOC-A1"})
	assert.Error(t, New(Options{}).Load(seed))

	seed = testSeed()
	seed.Items = append(seed.Items, domain.Item{ID: "X", Category: "BOGUS"})
	assert.Error(t, New(Options{}).Load(seed))
}

func TestScan_CheckoutLastUnitGoesToRisk(t *testing.T) {
	l := newTestLedger(t, Options{})

	res, err := l.Scan(ScanRequest{CardHex: "a1b2c3", Mode: "OUT", Qty: 1, Actor: "op1"})
	require.NoError(t, err)

	assert.Equal(t, domain.ActionCheckout, res.Action)
	assert.Equal(t, "LOC-A1", res.LocationID)
	assert.Equal(t, int64(0), res.NewQty)
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, domain.StatusRisk, res.Status)

	m, ok := l.Mapping("A1B2C3")
	require.True(t, ok)
	assert.Equal(t, "LOC-A1", m.LastLocationID)

	item, _ := l.Item("ITEM-001")
	assert.Equal(t, domain.StatusRisk, item.Status)
	assertTotals(t, l)
}

func TestScan_PlainTagFollowsScanLocation(t *testing.T) {
	l := newTestLedger(t, Options{})
	_, _, err := l.SetMapping("T1", "ITEM-002", "LOC-R1")
	require.NoError(t, err)

	res, err := l.Scan(ScanRequest{CardHex: "T1", Mode: "IN", Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, "LOC-R1", res.LocationID)
	assert.Equal(t, int64(5), res.NewQty)
	assert.Equal(t, defaultActor, res.LogEntry.Actor)

	m, _ := l.Mapping("T1")
	assert.Equal(t, "LOC-R1", m.LastLocationID)

	res, err = l.Scan(ScanRequest{CardHex: "T1", Mode: "IN", Qty: 1, LocationID: "LOC-A1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.NewQty)
	m, _ = l.Mapping("T1")
	assert.Equal(t, "LOC-A1", m.LastLocationID)
	assertTotals(t, l)
}

func TestScan_DefaultLocationWhenTagHasNone(t *testing.T) {
	l := newTestLedger(t, Options{DefaultLocationID: "LOC-R1"})
	l.mu.Lock()
	l.tags.set("D00D", "ITEM-002", "", testNow)
	l.mu.Unlock()

	res, err := l.Scan(ScanRequest{CardHex: "D00D", Mode: "IN"})
	require.NoError(t, err)
	assert.Equal(t, "LOC-R1", res.LocationID)
	assert.Equal(t, int64(1), res.Qty)
}

func TestScan_BadgeNeverMutates(t *testing.T) {
	l := newTestLedger(t, Options{})
	before := l.Stocks("")

	for _, mode := range []string{"IN", "OUT"} {
		_, err := l.Scan(ScanRequest{CardHex: "badge01", Mode: mode, LocationID: "LOC-A1"})
		assert.Equal(t, KindBadgeScan, KindOf(err))
	}

	assert.Equal(t, before, l.Stocks(""))
	assert.Empty(t, l.Logs("", 0))
	assert.Empty(t, l.Unknown())
	_, ok := l.Mapping("BADGE01")
	assert.False(t, ok)

	_, _, err := l.SetMapping("BADGE01", "ITEM-001", "LOC-A1")
	assert.Equal(t, KindBadgeScan, KindOf(err))
}

func TestScan_UnmappedTagIsQuarantined(t *testing.T) {
	l := newTestLedger(t, Options{})
	before := l.Stocks("")

	_, err := l.Scan(ScanRequest{CardHex: "UNKNOWN123", Mode: "OUT", Actor: "op1"})
	assert.Equal(t, KindCardNotMapped, KindOf(err))

	unknown := l.Unknown()
	require.Len(t, unknown, 1)
	assert.Equal(t, "UNKNOWN123", unknown[0].CardHex)
	assert.Equal(t, domain.ModeOut, unknown[0].Mode)
	assert.Equal(t, string(KindCardNotMapped), unknown[0].Error)
	assert.NotEmpty(t, unknown[0].ID)
	assert.Equal(t, before, l.Stocks(""))
	assert.Empty(t, l.Logs("", 0))
}

func TestQuarantine_CapacityAndOrder(t *testing.T) {
	l := newTestLedger(t, Options{QuarantineCapacity: 3})
	for i := 0; i < 5; i++ {
		_, err := l.Scan(ScanRequest{CardHex: fmt.Sprintf("CAFE%02d", i), Mode: "IN"})
		require.Error(t, err)
		assert.LessOrEqual(t, l.QuarantineLen(), 3)
	}
	unknown := l.Unknown()
	require.Len(t, unknown, 3)
	assert.Equal(t, "CAFE04", unknown[0].CardHex)
	assert.Equal(t, "CAFE02", unknown[2].CardHex)
}

func TestSetMapping_ClearsQuarantinedScans(t *testing.T) {
	l := newTestLedger(t, Options{})
	for i := 0; i < 3; i++ {
		_, _ = l.Scan(ScanRequest{CardHex: "BEEF", Mode: "IN"})
	}
	_, _ = l.Scan(ScanRequest{CardHex: "CAFE", Mode: "IN"})
	require.Len(t, l.Unknown(), 4)

	m, cleared, err := l.SetMapping("0xbeef", "ITEM-002", "LOC-R1")
	require.NoError(t, err)
	assert.Equal(t, 3, cleared)
	assert.Equal(t, "BEEF", m.CardHex)

	unknown := l.Unknown()
	require.Len(t, unknown, 1)
	assert.Equal(t, "CAFE", unknown[0].CardHex)
}

func TestSetMapping_Validation(t *testing.T) {
	l := newTestLedger(t, Options{})
	_, _, err := l.SetMapping("T9", "NOPE", "LOC-A1")
	assert.Equal(t, KindUnknownItem, KindOf(err))
	_, _, err = l.SetMapping("T9", "ITEM-001", "NOPE")
	assert.Equal(t, KindUnknownLocation, KindOf(err))
	_, _, err = l.SetMapping("", "ITEM-001", "LOC-A1")
	assert.Equal(t, KindInvalidRequest, KindOf(err))
}

func TestScan_FoodRemapsToDisposal(t *testing.T) {
	l := newTestLedger(t, Options{})

	res, err := l.Scan(ScanRequest{CardHex: "F00D01", Mode: "OUT", LocationID: "LOC-GALLEY"})
	require.NoError(t, err)
	assert.Equal(t, TransitionConsumedToTrash, res.Transition)
	assert.Equal(t, "TRASH-001", res.NextItemID)
	assert.Equal(t, "FOOD-001", res.ItemID)
	assert.Equal(t, int64(4), res.NewQty)

	m, _ := l.Mapping("F00D01")
	assert.Equal(t, "TRASH-001", m.ItemID)
	assert.Equal(t, "LOC-GALLEY", m.LastLocationID)

	// The same tag is now a disposal item and lands in the disposal bin.
	res, err = l.Scan(ScanRequest{CardHex: "F00D01", Mode: "IN", LocationID: "LOC-A1"})
	require.NoError(t, err)
	assert.Equal(t, "TRASH-001", res.ItemID)
	assert.Equal(t, "LOC-DISPOSAL", res.LocationID)
	assertTotals(t, l)
}

func TestScan_FoodWithoutPairedItemKeepsMapping(t *testing.T) {
	l := newTestLedger(t, Options{})

	res, err := l.Scan(ScanRequest{CardHex: "F00D02", Mode: "OUT", LocationID: "LOC-GALLEY"})
	require.NoError(t, err)
	assert.Equal(t, TransitionConsumed, res.Transition)
	assert.Empty(t, res.NextItemID)

	m, _ := l.Mapping("F00D02")
	assert.Equal(t, "FOOD-002", m.ItemID)
}

func TestScan_CategoryRules(t *testing.T) {
	tests := []struct {
		name string
		req  ScanRequest
		want Kind
	}{
		{"food checkin", ScanRequest{CardHex: "F00D01", Mode: "IN", LocationID: "LOC-GALLEY"}, KindFoodOnlyOut},
		{"food without location", ScanRequest{CardHex: "F00D01", Mode: "OUT"}, KindUnknownLocation},
		{"food unknown location", ScanRequest{CardHex: "F00D01", Mode: "OUT", LocationID: "LOC-X"}, KindUnknownLocation},
		{"food over-consume", ScanRequest{CardHex: "F00D01", Mode: "OUT", Qty: 6, LocationID: "LOC-GALLEY"}, KindInsufficientStock},
		{"trash checkout", ScanRequest{CardHex: "7A5H01", Mode: "OUT"}, KindTrashOnlyIn},
		{"gen without location", ScanRequest{CardHex: "6E6E01", Mode: "OUT"}, KindUnknownLocation},
		{"plain over-checkout", ScanRequest{CardHex: "A1B2C3", Mode: "OUT", Qty: 2}, KindInsufficientStock},
		{"bad mode", ScanRequest{CardHex: "A1B2C3", Mode: "SIDEWAYS"}, KindInvalidMode},
		{"negative qty", ScanRequest{CardHex: "A1B2C3", Mode: "IN", Qty: -1}, KindInvalidQty},
		{"checkin past int64", ScanRequest{CardHex: "A1B2C3", Mode: "IN", Qty: math.MaxInt64}, KindInvalidQty},
		{"checkin past int64 elsewhere", ScanRequest{CardHex: "A1B2C3", Mode: "IN", Qty: math.MaxInt64, LocationID: "LOC-R1"}, KindInvalidQty},
		{"empty tag", ScanRequest{CardHex: "  ", Mode: "IN"}, KindInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t, Options{})
			before := l.Stocks("")
			mappings := l.Mappings()

			_, err := l.Scan(tt.req)
			assert.Equal(t, tt.want, KindOf(err))
			assert.Equal(t, before, l.Stocks(""))
			assert.Equal(t, mappings, l.Mappings())
			assert.Empty(t, l.Logs("", 0))
		})
	}
}

func TestScan_TrashForcedToDisposal(t *testing.T) {
	l := newTestLedger(t, Options{})

	res, err := l.Scan(ScanRequest{CardHex: "7A5H01", Mode: "IN", LocationID: "LOC-A1"})
	require.NoError(t, err)
	assert.Equal(t, "LOC-DISPOSAL", res.LocationID)
	m, _ := l.Mapping("7A5H01")
	assert.Equal(t, "LOC-DISPOSAL", m.LastLocationID)
	for _, r := range l.Stocks("TRASH-001") {
		assert.Equal(t, "LOC-DISPOSAL", r.LocationID)
	}
}

func TestScan_TrashWithoutDisposalLocation(t *testing.T) {
	seed := testSeed()
	seed.Locations = seed.Locations[:3]
	l := New(Options{})
	require.NoError(t, l.Load(seed))

	_, err := l.Scan(ScanRequest{CardHex: "7A5H01", Mode: "IN"})
	assert.Equal(t, KindUnknownLocation, KindOf(err))
}

func TestScan_BadItemMapping(t *testing.T) {
	l := newTestLedger(t, Options{})
	l.mu.Lock()
	l.tags.set("DEAD", "GHOST", "LOC-A1", testNow)
	l.mu.Unlock()

	_, err := l.Scan(ScanRequest{CardHex: "DEAD", Mode: "IN"})
	assert.Equal(t, KindBadItemMapping, KindOf(err))
}

func TestForceMove(t *testing.T) {
	l := newTestLedger(t, Options{})
	before := l.Stocks("")

	m, err := l.ForceMove("a1b2c3", "LOC-R1")
	require.NoError(t, err)
	assert.Equal(t, "LOC-R1", m.LastLocationID)
	assert.Equal(t, before, l.Stocks(""))
	assert.Empty(t, l.Logs("", 0))

	_, err = l.ForceMove("NOPE", "LOC-R1")
	assert.Equal(t, KindCardNotMapped, KindOf(err))
	_, err = l.ForceMove("A1B2C3", "LOC-X")
	assert.Equal(t, KindUnknownLocation, KindOf(err))
}

func TestRemoveMapping(t *testing.T) {
	l := newTestLedger(t, Options{})
	require.NoError(t, l.RemoveMapping("A1B2C3"))
	assert.Equal(t, KindCardNotMapped, KindOf(l.RemoveMapping("A1B2C3")))

	_, err := l.Scan(ScanRequest{CardHex: "A1B2C3", Mode: "IN"})
	assert.Equal(t, KindCardNotMapped, KindOf(err))
}

func TestAdjust(t *testing.T) {
	l := newTestLedger(t, Options{})

	res, err := l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeIn, Qty: 4, Actor: "op2", WorkOrder: "WO-7"})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCheckin, res.Action)
	assert.Equal(t, int64(4), res.NewQty)
	assert.Equal(t, int64(7), res.Total)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "WO-7", res.LogEntry.WorkOrder)

	_, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeOut, Qty: 5})
	assert.Equal(t, KindInsufficientStock, KindOf(err))
	_, err = l.Adjust(AdjustRequest{ItemID: "NOPE", LocationID: "LOC-A1", Mode: domain.ModeOut, Qty: 1})
	assert.Equal(t, KindUnknownItem, KindOf(err))
	_, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "NOPE", Mode: domain.ModeOut, Qty: 1})
	assert.Equal(t, KindUnknownLocation, KindOf(err))
	_, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeOut, Qty: 0})
	assert.Equal(t, KindInvalidQty, KindOf(err))

	res, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeOut, Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.NewQty)
	// emptied rows are kept
	rows := l.Stocks("ITEM-002")
	require.Len(t, rows, 2)
	assertTotals(t, l)

	_, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-R1", Mode: domain.ModeIn, Qty: math.MaxInt64})
	assert.Equal(t, KindInvalidQty, KindOf(err))
	assert.Equal(t, rows, l.Stocks("ITEM-002"))
	assert.Len(t, l.Logs("ITEM-002", 0), 2)
	assertTotals(t, l)
}

func TestAdjust_CheckinUpToInt64Limit(t *testing.T) {
	l := newTestLedger(t, Options{})

	// ITEM-002 holds 3 units.
	res, err := l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeIn, Qty: math.MaxInt64 - 3})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), res.Total)
	assert.Equal(t, domain.StatusOK, res.Status)

	_, err = l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-R1", Mode: domain.ModeIn, Qty: 1})
	assert.Equal(t, KindInvalidQty, KindOf(err))
	assertTotals(t, l)
}

func TestAdjust_ConsumesEarliestExpiryFirst(t *testing.T) {
	l := newTestLedger(t, Options{})
	soon := testNow.Add(48 * time.Hour)
	later := testNow.Add(30 * 24 * time.Hour)

	for _, exp := range []*time.Time{&later, &soon} {
		_, err := l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeIn, Qty: 2, ExpiresAt: exp})
		require.NoError(t, err)
	}
	res, err := l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-A1", Mode: domain.ModeOut, Qty: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.NewQty)

	for _, r := range l.Stocks("ITEM-002") {
		if r.ExpiresAt == nil {
			continue
		}
		if r.ExpiresAt.Equal(soon) {
			assert.Equal(t, int64(0), r.Qty)
		} else {
			assert.Equal(t, int64(1), r.Qty)
		}
	}

	expiring := l.Expiring(7 * 24 * time.Hour)
	assert.Empty(t, expiring)
	expiring = l.Expiring(31 * 24 * time.Hour)
	require.Len(t, expiring, 1)
	assert.True(t, expiring[0].ExpiresAt.Equal(later))
}

func TestLogs_MostRecentFirst(t *testing.T) {
	l := newTestLedger(t, Options{})
	for i := 0; i < 3; i++ {
		_, err := l.Adjust(AdjustRequest{ItemID: "ITEM-002", LocationID: "LOC-R1", Mode: domain.ModeIn, Qty: 1})
		require.NoError(t, err)
	}
	_, err := l.Adjust(AdjustRequest{ItemID: "ITEM-001", LocationID: "LOC-A1", Mode: domain.ModeIn, Qty: 1})
	require.NoError(t, err)

	logs := l.Logs("", 0)
	require.Len(t, logs, 4)
	assert.Equal(t, int64(4), logs[0].ID)
	assert.Equal(t, int64(1), logs[3].ID)

	logs = l.Logs("ITEM-002", 2)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(3), logs[0].ID)
}

func TestItems_StatusFilter(t *testing.T) {
	l := newTestLedger(t, Options{})
	for _, item := range l.Items(domain.StatusRisk) {
		assert.Equal(t, domain.StatusRisk, item.Status)
	}
	ok := l.Items(domain.StatusOK)
	ids := make([]string, 0, len(ok))
	for _, item := range ok {
		ids = append(ids, item.ID)
	}
	assert.ElementsMatch(t, []string{"ITEM-002", "ITEM-010", "FOOD-001", "FOOD-002"}, ids)
}

type recordingObserver struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	scans   []domain.UnknownScan
}

func (r *recordingObserver) EntryAppended(e domain.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *recordingObserver) ScanQuarantined(s domain.UnknownScan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans = append(r.scans, s)
}

func TestObserversSeeCommittedWork(t *testing.T) {
	obs := &recordingObserver{}
	l := newTestLedger(t, Options{Observers: []Observer{obs}})

	_, err := l.Scan(ScanRequest{CardHex: "A1B2C3", Mode: "IN"})
	require.NoError(t, err)
	_, err = l.Scan(ScanRequest{CardHex: "FFFF", Mode: "IN"})
	require.Error(t, err)
	_, err = l.Scan(ScanRequest{CardHex: "BADGE01", Mode: "IN"})
	require.Error(t, err)

	assert.Len(t, obs.entries, 1)
	require.Len(t, obs.scans, 1)
	assert.Equal(t, "FFFF", obs.scans[0].CardHex)
}

func TestConcurrentScansKeepTotalsConsistent(t *testing.T) {
	l := newTestLedger(t, Options{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.Scan(ScanRequest{CardHex: "A1B2C3", Mode: "IN", LocationID: "LOC-A1"})
		}()
		go func() {
			defer wg.Done()
			_, _ = l.Scan(ScanRequest{CardHex: "A1B2C3", Mode: "OUT", LocationID: "LOC-A1"})
			_ = l.Items("")
		}()
	}
	wg.Wait()
	assertTotals(t, l)

	item, _ := l.Item("ITEM-001")
	var ins, outs int64
	for _, e := range l.Logs("ITEM-001", 0) {
		if e.Mode == domain.ModeIn {
			ins += e.Qty
		} else {
			outs += e.Qty
		}
	}
	assert.Equal(t, 1+ins-outs, item.Total)
}
