package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_UpsertDedupsByIdentity(t *testing.T) {
	st := NewStore()

	st.Upsert(Symbol{Name: "getUser", Kind: KindFunction, SourceFile: "/a.ts", Description: "first"})
	st.Upsert(Symbol{Name: "getUser", Kind: KindFunction, SourceFile: "/a.ts", Description: "second"})

	all := st.All()
	assert.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Description)
}

func TestStore_IdentityIncludesKindFileParent(t *testing.T) {
	st := NewStore()

	st.Upsert(Symbol{Name: "run", Kind: KindFunction, SourceFile: "/a.ts"})
	st.Upsert(Symbol{Name: "run", Kind: KindMethod, SourceFile: "/a.ts", Parent: "Job"})
	st.Upsert(Symbol{Name: "run", Kind: KindFunction, SourceFile: "/b.ts"})

	assert.Equal(t, 3, st.Len())
}

func TestStore_MergeKeepsExistingWhenIncomingEmpty(t *testing.T) {
	st := NewStore()

	st.Upsert(Symbol{Name: "add", Kind: KindFunction, SourceFile: "/a.ts", Signature: "(a, b): number", Description: "adds"})
	st.Upsert(Symbol{Name: "add", Kind: KindFunction, SourceFile: "/a.ts", Exported: true})

	all := st.All()
	assert.Len(t, all, 1)
	assert.Equal(t, "(a, b): number", all[0].Signature)
	assert.Equal(t, "adds", all[0].Description)
	assert.True(t, all[0].Exported)
}

func TestStore_RemoveByFile(t *testing.T) {
	st := NewStore()

	st.Upsert(Symbol{Name: "a", Kind: KindFunction, SourceFile: "/one.ts"})
	st.Upsert(Symbol{Name: "b", Kind: KindFunction, SourceFile: "/one.ts"})
	st.Upsert(Symbol{Name: "c", Kind: KindFunction, SourceFile: "/two.ts"})

	removed := st.RemoveByFile("/one.ts")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, "c", st.All()[0].Name)
}

func TestStore_AllIsSnapshot(t *testing.T) {
	st := NewStore()
	st.Upsert(Symbol{Name: "a", Kind: KindFunction, SourceFile: "/x.ts"})

	snapshot := st.All()
	st.Upsert(Symbol{Name: "b", Kind: KindFunction, SourceFile: "/x.ts"})

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, st.Len())
}

func TestStore_Clear(t *testing.T) {
	st := NewStore()
	st.Upsert(Symbol{Name: "a", Kind: KindFunction, SourceFile: "/x.ts"})

	st.Clear()
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, st.All())
}
