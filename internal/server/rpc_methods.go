package server

import (
	"context"
	"errors"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/internal/engine"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

// Custom JSON-RPC error codes for timer operations.
const (
	codeTimerNotFound = jrpc2.Code(-32001)
	codeZeroDuration  = jrpc2.Code(-32003)
	codeInvalidParams = jrpc2.Code(-32602)
)

// RPCConfig holds configuration for the JSON-RPC endpoints.
type RPCConfig struct {
	Secret    string // Auth token for the HTTP endpoints (empty disables them)
	Version   string // Daemon version
	Commit    string // Git commit
	BuildType string // Build type
}

// RPCServer holds the method table shared by every transport.
type RPCServer struct {
	engine    *engine.Engine
	methods   handler.Map
	bridge    jhttp.Bridge
	version   string
	commit    string
	buildType string
}

// NewRPCServer creates the method table and the HTTP bridge over it.
func NewRPCServer(cfg *RPCConfig, e *engine.Engine) *RPCServer {
	rs := &RPCServer{
		engine:    e,
		version:   cfg.Version,
		commit:    cfg.Commit,
		buildType: cfg.BuildType,
	}
	rs.methods = handler.Map{
		common.MethodGetVersion:    handler.New(rs.systemGetVersion),
		common.MethodCreate:        handler.New(rs.timerCreate),
		common.MethodGet:           handler.New(rs.timerGet),
		common.MethodList:          handler.New(rs.timerList),
		common.MethodStart:         handler.New(rs.timerStart),
		common.MethodPause:         handler.New(rs.timerPause),
		common.MethodReset:         handler.New(rs.timerReset),
		common.MethodResetChain:    handler.New(rs.timerResetChain),
		common.MethodSetLink:       handler.New(rs.timerSetLink),
		common.MethodDelete:        handler.New(rs.timerDelete),
		common.MethodReorder:       handler.New(rs.timerReorder),
		common.MethodSetVisibility: handler.New(rs.viewSetVisibility),
	}
	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// rpcError maps domain errors onto JSON-RPC error codes.
func rpcError(err error) error {
	switch {
	case errors.Is(err, timerlib.ErrTimerNotFound):
		return &jrpc2.Error{Code: codeTimerNotFound, Message: err.Error()}
	case errors.Is(err, engine.ErrZeroDuration):
		return &jrpc2.Error{Code: codeZeroDuration, Message: err.Error()}
	case errors.Is(err, timerlib.ErrEmptyName),
		errors.Is(err, timerlib.ErrInvalidDuration),
		errors.Is(err, timerlib.ErrUnknownSound),
		errors.Is(err, timerlib.ErrInvalidOrder):
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return err
}

func missingParam(name string) error {
	return &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: " + name}
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	return &common.VersionResult{
		Version:   rs.version,
		Commit:    rs.commit,
		BuildType: rs.buildType,
	}, nil
}

func (rs *RPCServer) timerCreate(ctx context.Context, p *common.CreateParams) (*timerlib.Projection, error) {
	total, err := p.Total()
	if err != nil {
		return nil, rpcError(err)
	}
	s, err := timerlib.ParseSound(p.Sound)
	if err != nil {
		return nil, rpcError(err)
	}
	proj, err := rs.engine.Create(ctx, p.Name, total, s)
	if err != nil {
		return nil, rpcError(err)
	}
	return &proj, nil
}

func (rs *RPCServer) timerGet(ctx context.Context, p *common.IDParams) (*timerlib.Projection, error) {
	return rs.byID(ctx, p, rs.engine.Get)
}

func (rs *RPCServer) timerStart(ctx context.Context, p *common.IDParams) (*timerlib.Projection, error) {
	return rs.byID(ctx, p, rs.engine.Start)
}

func (rs *RPCServer) timerPause(ctx context.Context, p *common.IDParams) (*timerlib.Projection, error) {
	return rs.byID(ctx, p, rs.engine.Pause)
}

func (rs *RPCServer) timerReset(ctx context.Context, p *common.IDParams) (*timerlib.Projection, error) {
	return rs.byID(ctx, p, rs.engine.Reset)
}

func (rs *RPCServer) byID(ctx context.Context, p *common.IDParams, fn func(context.Context, string) (timerlib.Projection, error)) (*timerlib.Projection, error) {
	if p.ID == "" {
		return nil, missingParam("id")
	}
	proj, err := fn(ctx, p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &proj, nil
}

func (rs *RPCServer) timerList(ctx context.Context) (*common.ListResult, error) {
	timers, err := rs.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	return &common.ListResult{Timers: timers}, nil
}

func (rs *RPCServer) timerResetChain(ctx context.Context, p *common.IDParams) (*common.ListResult, error) {
	if p.ID == "" {
		return nil, missingParam("id")
	}
	timers, err := rs.engine.ResetChain(ctx, p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.ListResult{Timers: timers}, nil
}

func (rs *RPCServer) timerSetLink(ctx context.Context, p *common.LinkParams) (*timerlib.Projection, error) {
	if p.From == "" {
		return nil, missingParam("from")
	}
	proj, err := rs.engine.SetLink(ctx, p.From, p.To)
	if err != nil {
		return nil, rpcError(err)
	}
	return &proj, nil
}

func (rs *RPCServer) timerDelete(ctx context.Context, p *common.IDParams) (*common.EmptyResult, error) {
	if p.ID == "" {
		return nil, missingParam("id")
	}
	if err := rs.engine.Delete(ctx, p.ID); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) timerReorder(ctx context.Context, p *common.ReorderParams) (*common.EmptyResult, error) {
	if err := rs.engine.Reorder(ctx, p.IDs); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResult{}, nil
}

func (rs *RPCServer) viewSetVisibility(ctx context.Context, p *common.VisibilityParams) (*common.EmptyResult, error) {
	if err := rs.engine.SetVisibility(ctx, p.Hidden); err != nil {
		return nil, err
	}
	return &common.EmptyResult{}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
