package catalog

import (
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/popstand/internal/poserr"
)

func ptr[T any](v T) *T { return &v }

func TestAdd_SetsInitialStock(t *testing.T) {
	c := New(nil)
	p := c.Add("p-1", "  Soda ", decimal.NewFromInt(10), 5)

	assert.Equal(t, "Soda", p.Name)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 5, p.InitialStock)
	assert.Equal(t, 0, p.UnitsSold())

	got, ok := c.Get("p-1")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestAdd_NormalizesNameToNFC(t *testing.T) {
	c := New(nil)
	p := c.Add("p-1", "Cafe\u0301", decimal.NewFromInt(3), 1)
	assert.Equal(t, "Caf\u00e9", p.Name)
}

func TestUpdate_MergesFields(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	p, ok := c.Update("p-1", Patch{Price: ptr(decimal.NewFromInt(12))})
	require.True(t, ok)
	assert.Equal(t, "Soda", p.Name)
	assert.Equal(t, "12", p.Price.String())
	assert.Equal(t, 5, p.Stock)
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	_, ok := c.Update("missing", Patch{Name: ptr("Water")})
	assert.False(t, ok)
	assert.Equal(t, []Product{{ID: "p-1", Name: "Soda", Price: decimal.NewFromInt(10), Stock: 5, InitialStock: 5}}, c.List())
}

func TestUpdate_StockAboveInitialRaisesInitial(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	p, _ := c.Update("p-1", Patch{Stock: ptr(8)})
	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, 8, p.InitialStock)

	p, _ = c.Update("p-1", Patch{Stock: ptr(3)})
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, 8, p.InitialStock, "initial stock is never decreased")
}

func TestDelete(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)
	c.Add("p-2", "Chips", decimal.NewFromInt(4), 2)
	c.Add("p-3", "Candy", decimal.NewFromInt(1), 9)

	assert.True(t, c.Delete("p-2"))
	assert.False(t, c.Delete("p-2"))

	_, ok := c.Get("p-2")
	assert.False(t, ok)
	p3, ok := c.Get("p-3")
	require.True(t, ok, "index must be rebuilt after delete")
	assert.Equal(t, "Candy", p3.Name)
	assert.Equal(t, 2, c.Len())
}

func TestRestock(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	p, err := c.Restock("p-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Stock)
	assert.Equal(t, 9, p.InitialStock)
}

func TestRestock_RejectsNonPositive(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	for _, units := range []int{0, -5} {
		_, err := c.Restock("p-1", units)
		assert.True(t, poserr.IsKind(err, poserr.KindValidation), "units=%d", units)
	}
	p, _ := c.Get("p-1")
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 5, p.InitialStock)
}

func TestRestock_UnknownProduct(t *testing.T) {
	c := New(nil)
	_, err := c.Restock("missing", 3)
	assert.True(t, poserr.IsKind(err, poserr.KindUnknownEntity))
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"2.5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in)
			if tt.wantErr {
				assert.True(t, poserr.IsKind(err, poserr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTake(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 5)

	require.NoError(t, c.Take("p-1", 3))
	p, _ := c.Get("p-1")
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, 3, p.UnitsSold())
}

func TestTake_FloorsAtZero(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 2)

	err := c.Take("p-1", 3)
	assert.True(t, poserr.IsKind(err, poserr.KindStockInconsistency))
	p, _ := c.Get("p-1")
	assert.Equal(t, 0, p.Stock)
}

func TestAvailable(t *testing.T) {
	c := New(nil)
	c.Add("p-1", "Soda", decimal.NewFromInt(10), 0)
	c.Add("p-2", "Chips", decimal.NewFromInt(4), 2)

	avail := c.Available()
	require.Len(t, avail, 1)
	assert.Equal(t, "p-2", avail[0].ID)
}

func TestNew_CopiesInput(t *testing.T) {
	in := []Product{{ID: "p-1", Name: "Soda", Price: decimal.NewFromInt(1), Stock: 1, InitialStock: 1}}
	c := New(in)
	in[0].Stock = 99

	p, _ := c.Get("p-1")
	assert.Equal(t, 1, p.Stock)
}

// Stock never exceeds initial stock across any add/restock sequence.
func TestProperty_StockNeverExceedsInitial(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	c := New(nil)
	ids := []string{}

	for i := 0; i < 500; i++ {
		if len(ids) == 0 || rng.IntN(3) == 0 {
			id := string(rune('a'+len(ids)%26)) + string(rune('0'+len(ids)/26))
			c.Add(id, "item", decimal.NewFromInt(1), rng.IntN(20))
			ids = append(ids, id)
		} else {
			_, _ = c.Restock(ids[rng.IntN(len(ids))], rng.IntN(10)-2)
		}
		for _, p := range c.List() {
			require.LessOrEqual(t, p.Stock, p.InitialStock, "after op %d", i)
		}
	}
}
