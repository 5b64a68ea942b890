package registry

import (
	"reflect"
	"testing"

	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Author struct {
	ID   int64  `po:"id,primaryKey,integer"`
	Name string `po:"name,varchar(40),unique"`
}

type Novel struct {
	ID       int64  `po:"id,primaryKey,integer"`
	Title    string `po:"title,varchar(40),notNull"`
	AuthorID int64  `po:"id_author,integer,notNull,fk:author(id)"`
}

type Review struct {
	ID      int64 `po:"id,primaryKey,integer"`
	NovelID int64 `po:"id_novel,integer,notNull,fk:novel(id)"`
}

type Keyless struct {
	Name string `po:"name,text"`
}

type Loop struct {
	ID     int64 `po:"id,primaryKey,integer"`
	NextID int64 `po:"id_next,integer,fk:knot(id)"`
}

type Knot struct {
	ID     int64 `po:"id,primaryKey,integer"`
	LoopID int64 `po:"id_loop,integer,fk:loop(id)"`
}

type Impostor struct {
	ID int64 `po:"id,primaryKey,integer"`
}

func (Impostor) TableName() string { return "author" }

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(Author{}))
	assert.True(t, reg.Has(reflect.TypeOf(Author{})))
	assert.True(t, reg.Has(reflect.TypeOf(&Author{})))
	assert.True(t, reg.HasTable("author"))

	assert.NoError(t, reg.Register(Author{}, &Author{}), "registering twice is a no-op")

	assert.ErrorIs(t, reg.Register("not a struct"), runtime.ErrInvalidModel)
	assert.ErrorIs(t, reg.Register(nil), runtime.ErrInvalidModel)
	assert.ErrorIs(t, reg.Register(Keyless{}), runtime.ErrNoPrimaryKey)

	err := reg.Register(Impostor{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered by Author")
	assert.False(t, reg.Has(reflect.TypeOf(Impostor{})))
}

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Author{}, Novel{}))

	table, err := reg.Get(reflect.TypeOf(&Novel{}))
	require.NoError(t, err)
	assert.Equal(t, "novel", table.Name)

	byValue, err := reg.Of(Novel{Title: "x"})
	require.NoError(t, err)
	assert.Same(t, table, byValue)

	byName, err := reg.GetByName("author")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Author{}), byName.GoType)

	_, err = reg.Get(reflect.TypeOf(Review{}))
	assert.ErrorIs(t, err, runtime.ErrNotRegistered)
	_, err = reg.GetByName("review")
	assert.ErrorIs(t, err, runtime.ErrNotRegistered)
	_, err = reg.Of(nil)
	assert.ErrorIs(t, err, runtime.ErrInvalidModel)

	assert.Equal(t, []string{"author", "novel"}, reg.Names())
}

func TestRegistry_Tables(t *testing.T) {
	reg := NewRegistry()
	// children first
	require.NoError(t, reg.Register(Review{}, Novel{}, Author{}))

	tables, err := reg.Tables()
	require.NoError(t, err)

	var order []string
	for _, table := range tables {
		order = append(order, table.Name)
	}
	assert.Equal(t, []string{"author", "novel", "review"}, order)
}

func TestRegistry_TablesCycle(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Loop{}, Knot{}))

	_, err := reg.Tables()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[knot loop]")
}
