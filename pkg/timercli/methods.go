package timercli

import (
	"context"
	"fmt"

	"github.com/warpdl/warptimer/common"
	"github.com/warpdl/warptimer/pkg/timerlib"
)

func invoke[T any](ctx context.Context, c *Client, method string, params any) (*T, error) {
	var out T
	if err := c.rpc.CallResult(ctx, method, params, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &out, nil
}

// Version returns the daemon's build information.
func (c *Client) Version(ctx context.Context) (*common.VersionResult, error) {
	return invoke[common.VersionResult](ctx, c, common.MethodGetVersion, nil)
}

// Create adds a stopped timer.
func (c *Client) Create(ctx context.Context, p common.CreateParams) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodCreate, &p)
}

// Get returns the projection of one timer.
func (c *Client) Get(ctx context.Context, id string) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodGet, &common.IDParams{ID: id})
}

// List returns every timer in display order.
func (c *Client) List(ctx context.Context) ([]timerlib.Projection, error) {
	res, err := invoke[common.ListResult](ctx, c, common.MethodList, nil)
	if err != nil {
		return nil, err
	}
	return res.Timers, nil
}

// Start starts (or resumes) a timer.
func (c *Client) Start(ctx context.Context, id string) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodStart, &common.IDParams{ID: id})
}

// Pause pauses a timer.
func (c *Client) Pause(ctx context.Context, id string) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodPause, &common.IDParams{ID: id})
}

// Reset stops a timer and restores its full duration.
func (c *Client) Reset(ctx context.Context, id string) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodReset, &common.IDParams{ID: id})
}

// ResetChain resets id and every timer reachable through its links.
func (c *Client) ResetChain(ctx context.Context, id string) ([]timerlib.Projection, error) {
	res, err := invoke[common.ListResult](ctx, c, common.MethodResetChain, &common.IDParams{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Timers, nil
}

// SetLink makes to start when from completes.
func (c *Client) SetLink(ctx context.Context, from, to string) (*timerlib.Projection, error) {
	return invoke[timerlib.Projection](ctx, c, common.MethodSetLink, &common.LinkParams{From: from, To: to})
}

// Unlink clears from's chain link.
func (c *Client) Unlink(ctx context.Context, from string) (*timerlib.Projection, error) {
	return c.SetLink(ctx, from, "")
}

// Delete removes a timer.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := invoke[common.EmptyResult](ctx, c, common.MethodDelete, &common.IDParams{ID: id})
	return err
}

// Reorder sets the display order; ids must name every timer once.
func (c *Client) Reorder(ctx context.Context, ids []string) error {
	_, err := invoke[common.EmptyResult](ctx, c, common.MethodReorder, &common.ReorderParams{IDs: ids})
	return err
}

// SetVisibility tells the daemon whether any timer view is on screen.
func (c *Client) SetVisibility(ctx context.Context, hidden bool) error {
	_, err := invoke[common.EmptyResult](ctx, c, common.MethodSetVisibility, &common.VisibilityParams{Hidden: hidden})
	return err
}
