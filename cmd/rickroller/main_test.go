package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/radutopala/rickroller/internal/api"
	"github.com/radutopala/rickroller/internal/config"
	"github.com/radutopala/rickroller/internal/mcpserver"
	"github.com/radutopala/rickroller/internal/metrics"
)

type fakeAPIServer struct {
	handler http.Handler
	metrics *metrics.Metrics
	opts    api.Options
	addr    string
	err     error
}

func (f *fakeAPIServer) Run(_ context.Context, addr string) error {
	f.addr = addr
	return f.err
}

type MainSuite struct {
	suite.Suite
	origConfigLoad        func() (*config.Config, error)
	origConfigPath        func() (string, error)
	origNewAPIServer      func(http.Handler, *metrics.Metrics, api.Options, *slog.Logger) apiServer
	origNewMCPServer      func(mcpserver.Options, mcpserver.Recorder, *slog.Logger) *mcpserver.Server
	origNewStdioTransport func() mcp.Transport
	origResolveVersion    func(string) string
	origVersion           string

	cfg       *config.Config
	fakeAPI   *fakeAPIServer
	mcpOpts   mcpserver.Options
	mcpRecord mcpserver.Recorder
}

func TestMainSuite(t *testing.T) {
	suite.Run(t, new(MainSuite))
}

func (s *MainSuite) SetupTest() {
	s.origConfigLoad = configLoad
	s.origConfigPath = configPath
	s.origNewAPIServer = newAPIServer
	s.origNewMCPServer = newMCPServer
	s.origNewStdioTransport = newStdioTransport
	s.origResolveVersion = resolveVersion
	s.origVersion = version

	s.cfg = &config.Config{
		ListenAddr:         "localhost:8000",
		LogLevel:           "error",
		LogFormat:          "text",
		Stateless:          true,
		CORSAllowedOrigins: []string{"*"},
		MetricsEnabled:     true,
		ShutdownTimeout:    5 * time.Second,
	}
	configLoad = func() (*config.Config, error) { return s.cfg, nil }

	s.fakeAPI = &fakeAPIServer{}
	newAPIServer = func(h http.Handler, m *metrics.Metrics, opts api.Options, _ *slog.Logger) apiServer {
		s.fakeAPI.handler = h
		s.fakeAPI.metrics = m
		s.fakeAPI.opts = opts
		return s.fakeAPI
	}
	newMCPServer = func(opts mcpserver.Options, rec mcpserver.Recorder, logger *slog.Logger) *mcpserver.Server {
		s.mcpOpts = opts
		s.mcpRecord = rec
		return mcpserver.New(opts, rec, logger)
	}
}

func (s *MainSuite) TearDownTest() {
	configLoad = s.origConfigLoad
	configPath = s.origConfigPath
	newAPIServer = s.origNewAPIServer
	newMCPServer = s.origNewMCPServer
	newStdioTransport = s.origNewStdioTransport
	resolveVersion = s.origResolveVersion
	version = s.origVersion
}

func (s *MainSuite) execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// --- root ---

func (s *MainSuite) TestRootCommands() {
	root := newRootCmd()
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(s.T(), names["serve"])
	require.True(s.T(), names["mcp"])
	require.True(s.T(), names["init"])
	require.True(s.T(), names["version"])
}

func (s *MainSuite) TestVersionCmd() {
	version = "1.2.3"
	out, err := s.execute("version")
	require.NoError(s.T(), err)
	require.Contains(s.T(), out, "rickroller 1.2.3")
	require.NotContains(s.T(), out, "commit:")
}

func (s *MainSuite) TestResolveVersionKeepsExplicitVersion() {
	require.Equal(s.T(), "v1.0.0", s.origResolveVersion("v1.0.0"))
}

// --- init ---

func (s *MainSuite) TestInitWritesExampleConfig() {
	path := filepath.Join(s.T().TempDir(), ".rickroller", "config.json")
	configPath = func() (string, error) { return path, nil }

	out, err := s.execute("init")
	require.NoError(s.T(), err)
	require.Contains(s.T(), out, path)

	data, err := os.ReadFile(path)
	require.NoError(s.T(), err)
	require.Equal(s.T(), config.ExampleConfig, data)

	_, err = s.execute("init")
	require.Error(s.T(), err)
	require.Contains(s.T(), err.Error(), "already exists")

	_, err = s.execute("init", "--force")
	require.NoError(s.T(), err)
}

func (s *MainSuite) TestInitPathError() {
	configPath = func() (string, error) { return "", errors.New("no home") }
	_, err := initConfig(false)
	require.EqualError(s.T(), err, "no home")
}

// --- serve ---

func (s *MainSuite) TestServeUsesConfig() {
	s.cfg.StrictArguments = true
	s.cfg.ListenAddr = "0.0.0.0:9000"

	require.NoError(s.T(), serve(func(*config.Config) {}))
	require.Equal(s.T(), "0.0.0.0:9000", s.fakeAPI.addr)
	require.NotNil(s.T(), s.fakeAPI.handler)
	require.NotNil(s.T(), s.fakeAPI.metrics)
	require.Equal(s.T(), []string{"*"}, s.fakeAPI.opts.CORSAllowedOrigins)
	require.Equal(s.T(), 5*time.Second, s.fakeAPI.opts.ShutdownTimeout)
	require.True(s.T(), s.mcpOpts.StrictArguments)
	require.Same(s.T(), s.fakeAPI.metrics, s.mcpRecord)
}

func (s *MainSuite) TestServeMetricsDisabled() {
	s.cfg.MetricsEnabled = false

	require.NoError(s.T(), serve(func(*config.Config) {}))
	require.Nil(s.T(), s.fakeAPI.metrics)
	require.Nil(s.T(), s.mcpRecord)
}

func (s *MainSuite) TestServeFlagsOverrideConfig() {
	_, err := s.execute("serve", "--addr", "127.0.0.1:9999", "--strict")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "127.0.0.1:9999", s.fakeAPI.addr)
	require.True(s.T(), s.mcpOpts.StrictArguments)
}

func (s *MainSuite) TestServeDefaultFlagsKeepConfig() {
	s.cfg.ListenAddr = "localhost:7000"
	_, err := s.execute("serve")
	require.NoError(s.T(), err)
	require.Equal(s.T(), "localhost:7000", s.fakeAPI.addr)
	require.False(s.T(), s.mcpOpts.StrictArguments)
}

func (s *MainSuite) TestServeErrors() {
	s.Run("config error", func() {
		configLoad = func() (*config.Config, error) { return nil, errors.New("bad config") }
		err := serve(func(*config.Config) {})
		require.EqualError(s.T(), err, "bad config")
	})
	s.Run("run error", func() {
		configLoad = func() (*config.Config, error) { return s.cfg, nil }
		s.fakeAPI.err = errors.New("address in use")
		err := serve(func(*config.Config) {})
		require.Error(s.T(), err)
		require.Contains(s.T(), err.Error(), "running api server")
	})
}

// --- mcp ---

func (s *MainSuite) TestRunMCPOverStdioTransport() {
	configLoad = func() (*config.Config, error) { return nil, errors.New("no config") }
	serverT, clientT := mcp.NewInMemoryTransports()
	newStdioTransport = func() mcp.Transport { return serverT }
	logPath := filepath.Join(s.T().TempDir(), "mcp.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runMCP(ctx, logPath, true, true) }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(s.T(), err)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "rick-roll",
		Arguments: map[string]any{"autoplay": true},
	})
	require.NoError(s.T(), err)
	require.False(s.T(), res.IsError)
	require.True(s.T(), s.mcpOpts.StrictArguments)
	require.Nil(s.T(), s.mcpRecord)

	session.Close()
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("mcp server did not stop")
	}

	data, err := os.ReadFile(logPath)
	require.NoError(s.T(), err)
	require.Contains(s.T(), string(data), "using default config")
	require.Contains(s.T(), string(data), "mcp tool call")
}

func (s *MainSuite) TestRunMCPStrictFromConfig() {
	s.cfg.StrictArguments = true
	serverT, _ := mcp.NewInMemoryTransports()
	newStdioTransport = func() mcp.Transport { return serverT }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = runMCP(ctx, filepath.Join(s.T().TempDir(), "mcp.log"), false, false)
	require.True(s.T(), s.mcpOpts.StrictArguments)
}

func (s *MainSuite) TestRunMCPLogOpenError() {
	err := runMCP(context.Background(), filepath.Join(s.T().TempDir(), "missing", "mcp.log"), false, false)
	require.Error(s.T(), err)
	require.Contains(s.T(), err.Error(), "opening mcp log")
}
