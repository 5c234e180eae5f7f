package socket

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/symdex/internal/domain/registry"
	"github.com/corey/symdex/internal/domain/usage"
)

// stubOps records calls and returns canned results.
type stubOps struct {
	lastSearch SearchParams
	lastUsages UsagesParams
	wipeErr    error
	wiped      bool
}

func (o *stubOps) Search(p SearchParams) SearchResult {
	o.lastSearch = p
	return SearchResult{
		Symbols: []SymbolInfo{{Name: "getUser", Kind: "function", File: "/src/user.ts", Exported: true}},
		Count:   1,
	}
}

func (o *stubOps) Complete(p CompleteParams) SearchResult {
	return SearchResult{
		Symbols: []SymbolInfo{{Name: p.Prefix + "User", Kind: "function", File: "/src/user.ts"}},
		Count:   1,
	}
}

func (o *stubOps) Doc(p DocParams) DocResult {
	return DocResult{
		Found:    true,
		Symbol:   &SymbolInfo{Name: p.Name, Kind: "class", File: "/src/svc.ts"},
		Children: []SymbolInfo{{Name: "getUser", Kind: "method", Parent: p.Name}},
	}
}

func (o *stubOps) Usages(p UsagesParams) UsagesResult {
	o.lastUsages = p
	return UsagesResult{
		Found:      true,
		Symbol:     &SymbolInfo{Name: p.Symbol},
		Usages:     []usage.Usage{{File: "/src/b.ts", Line: 3, Text: p.Symbol + "()"}},
		TotalFound: 1,
	}
}

func (o *stubOps) Refresh(p RefreshParams) registry.RefreshResult {
	return registry.RefreshResult{Refreshed: true, FilesProcessed: 2, TotalSymbols: 5}
}

func (o *stubOps) Stats() StatsResult {
	return StatsResult{SymbolCount: 5, FileCount: 2, Kinds: map[string]int{"function": 5}}
}

func (o *stubOps) Wipe() error {
	if o.wipeErr != nil {
		return o.wipeErr
	}
	o.wiped = true
	return nil
}

func startTestServer(t *testing.T, ops Ops) (*Client, *Server) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "test.sock")
	srv := NewServer(ops, sock)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { srv.Stop() })
	return NewClient(sock), srv
}

func TestSocketPath_StableAndDistinct(t *testing.T) {
	a := SocketPath("/projects/alpha")
	b := SocketPath("/projects/beta")

	assert.Equal(t, a, SocketPath("/projects/alpha"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "/tmp/symdex-"))
	assert.True(t, strings.HasSuffix(a, ".sock"))
}

func TestServer_SearchRoundtrip(t *testing.T) {
	ops := &stubOps{}
	client, _ := startTestServer(t, ops)

	limit := 5
	result, err := client.Search(SearchParams{Query: "getUser", Exact: true, Limit: &limit})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "getUser", result.Symbols[0].Name)

	// params survived the wire intact
	assert.Equal(t, "getUser", ops.lastSearch.Query)
	assert.True(t, ops.lastSearch.Exact)
	require.NotNil(t, ops.lastSearch.Limit)
	assert.Equal(t, 5, *ops.lastSearch.Limit)
}

func TestServer_SearchRequiresQuery(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	_, err := client.Search(SearchParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestServer_CompleteRoundtrip(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	result, err := client.Complete(CompleteParams{Prefix: "get"})
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "getUser", result.Symbols[0].Name)
}

func TestServer_DocRoundtrip(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	result, err := client.Doc(DocParams{Name: "UserService"})
	require.NoError(t, err)
	assert.True(t, result.Found)
	require.NotNil(t, result.Symbol)
	assert.Equal(t, "UserService", result.Symbol.Name)
	require.Len(t, result.Children, 1)
	assert.Equal(t, "UserService", result.Children[0].Parent)
}

func TestServer_UsagesRoundtrip(t *testing.T) {
	ops := &stubOps{}
	client, _ := startTestServer(t, ops)

	result, err := client.Usages(UsagesParams{Symbol: "helper", SkipDefinition: true})
	require.NoError(t, err)
	assert.True(t, result.Found)
	require.Len(t, result.Usages, 1)
	assert.Equal(t, 3, result.Usages[0].Line)
	assert.True(t, ops.lastUsages.SkipDefinition)
}

func TestServer_RefreshAndStats(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	refresh, err := client.Refresh(RefreshParams{FullScan: true})
	require.NoError(t, err)
	assert.True(t, refresh.Refreshed)
	assert.Equal(t, 2, refresh.FilesProcessed)

	stats, err := client.Stats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.SymbolCount)
	assert.Equal(t, 5, stats.Kinds["function"])
}

func TestServer_Health(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	health, err := client.Health()
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 5, health.SymbolCount)
	assert.NotEmpty(t, health.Uptime)
}

func TestServer_Wipe(t *testing.T) {
	ops := &stubOps{}
	client, _ := startTestServer(t, ops)

	require.NoError(t, client.Wipe())
	assert.True(t, ops.wiped)
}

func TestServer_WipeError(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{wipeErr: errors.New("persist failed")})

	err := client.Wipe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist failed")
}

func TestServer_UnknownMethod(t *testing.T) {
	client, _ := startTestServer(t, &stubOps{})

	_, err := client.call(Request{ID: "1", Method: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

func TestServer_ShutdownSignalsChannel(t *testing.T) {
	client, srv := startTestServer(t, &stubOps{})

	require.NoError(t, client.Shutdown())

	// the server closes the channel just after writing the response
	require.Eventually(t, func() bool {
		select {
		case <-srv.ShutdownCh():
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestServer_RefusesSecondInstance(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "dup.sock")

	first := NewServer(&stubOps{}, sock)
	require.NoError(t, first.Start())
	defer first.Stop()

	second := NewServer(&stubOps{}, sock)
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestClient_PingWithoutDaemon(t *testing.T) {
	client := NewClient(filepath.Join(t.TempDir(), "absent.sock"))
	assert.False(t, client.Ping())
}
