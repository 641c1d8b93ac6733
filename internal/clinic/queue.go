package clinic

import (
	"context"
	"errors"
)

// AssignQueue requests the next queue number for a department.
func (c *Client) AssignQueue(ctx context.Context, poli string) (*QueueTicket, error) {
	if poli == "" {
		return nil, errors.New("department is required")
	}
	resp, err := doPostJSON[queueResponse](ctx, c, "api/queue/assign", map[string]string{"poli": poli})
	if err != nil {
		return nil, err
	}
	return &resp.QueueTicket, nil
}

// SetQueue overrides the last issued number of a department. Requires an admin session.
func (c *Client) SetQueue(ctx context.Context, poli string, nomor int) (string, error) {
	if nomor < 0 {
		return "", errors.New("queue number must be >= 0")
	}
	resp, err := doPostJSON[envelope](ctx, c, "api/queue/set", map[string]any{"poli": poli, "nomor": nomor})
	if err != nil {
		return "", err
	}
	return resp.Msg, nil
}

// EngineStatus reports which face engine the service runs and whether its model is loaded.
func (c *Client) EngineStatus(ctx context.Context) (*EngineStatus, error) {
	resp, err := doGetJSON[engineResponse](ctx, c, "api/engine/status")
	if err != nil {
		return nil, err
	}
	return &resp.Status, nil
}
