package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/usecase"
	apperrors "showcase-cms/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// HTTPGateway talks to the document store API. Mutating calls carry the bearer token.
type HTTPGateway struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *fiber.Client
}

// NewHTTPGateway creates a gateway for the API at baseURL (scheme and host, no trailing path).
func NewHTTPGateway(baseURL, token string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		client: &fiber.Client{
			UserAgent:   "contentctl",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details struct {
		ValidationErrors []apperrors.ValidationError `json:"validation_errors"`
	} `json:"details"`
}

// err turns a failed envelope into the matching domain error.
func (e *envelope) err(status int) error {
	switch {
	case status == http.StatusConflict && e.Error == "version_conflict":
		return fmt.Errorf("%w: %s", model.ErrVersionConflict, e.Message)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrParentNotFound, e.Message)
	case e.Error == "validation_failed":
		ve := apperrors.NewValidationErrors()
		for _, v := range e.Details.ValidationErrors {
			ve.Add(v.Field, v.Message, v.Value)
		}
		return ve
	}
	message := e.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return apperrors.NewAppError(apperrors.ErrorTypeUpstream, message, status).WithCode(e.Error)
}

func (g *HTTPGateway) url(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return g.baseURL + "/api/v1/" + strings.Join(escaped, "/")
}

// do sends the request built on agent. Data is decoded into out even for failed
// responses that carry it.
func (g *HTTPGateway) do(ctx context.Context, agent *fiber.Agent, authed bool, out interface{}) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}
	if authed && g.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+g.token)
	}
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.Timeout(g.timeoutFor(ctx))

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unexpected response (status %d): %w", status, err)
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	if status >= http.StatusMultipleChoices || !env.Success {
		return env.err(status)
	}
	return nil
}

func (g *HTTPGateway) timeoutFor(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < g.timeout {
			return d
		}
	}
	return g.timeout
}

func (g *HTTPGateway) Fetch(ctx context.Context, parentID string, key model.CollectionKey) (*model.CollectionSnapshot, error) {
	var snap model.CollectionSnapshot
	agent := g.client.Get(g.url("parents", parentID, "collections", string(key)))
	if err := g.do(ctx, agent, false, &snap); err != nil {
		return nil, &FetchFailure{ParentID: parentID, Key: key, Err: err}
	}
	return &snap, nil
}

func (g *HTTPGateway) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	items := req.Items
	if items == nil {
		items = []model.CollectionItem{}
	}
	agent := g.client.Put(g.url("parents", req.ParentID, "collections", string(req.Key))).
		JSON(map[string]interface{}{"items": items, "expectedVersion": req.ExpectedVersion})

	var snap model.CollectionSnapshot
	if err := g.do(ctx, agent, true, &snap); err != nil {
		return nil, &SaveFailure{ParentID: req.ParentID, Key: req.Key, Err: err}
	}
	return &SaveResult{Version: snap.Version}, nil
}

// Reconciled reads the server-side merge of a collection with its seeds.
func (g *HTTPGateway) Reconciled(ctx context.Context, parentID string, key model.CollectionKey) (*usecase.ReconciledCollection, error) {
	var view usecase.ReconciledCollection
	agent := g.client.Get(g.url("parents", parentID, "collections", string(key)) + "?view=reconciled")
	if err := g.do(ctx, agent, false, &view); err != nil {
		return nil, &FetchFailure{ParentID: parentID, Key: key, Err: err}
	}
	return &view, nil
}

// ListParents lists parent documents; includeAll adds unpublished ones.
func (g *HTTPGateway) ListParents(ctx context.Context, includeAll bool) ([]*model.ParentDocument, error) {
	target := g.url("parents")
	if includeAll {
		target += "?includeAll=true"
	}
	var parents []*model.ParentDocument
	if err := g.do(ctx, g.client.Get(target), false, &parents); err != nil {
		return nil, err
	}
	return parents, nil
}

// ResolveAsset returns the asset path for name under kind.
func (g *HTTPGateway) ResolveAsset(ctx context.Context, kind model.Kind, name string) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	target := g.url("assets", string(kind), "resolve") + "?name=" + url.QueryEscape(name)
	if err := g.do(ctx, g.client.Get(target), false, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Notify submits req for outbound notification. A refused request still returns its receipt.
func (g *HTTPGateway) Notify(ctx context.Context, req *model.NotificationRequest) (*model.NotificationReceipt, error) {
	var receipt model.NotificationReceipt
	agent := g.client.Post(g.url("notifications")).JSON(req)
	err := g.do(ctx, agent, false, &receipt)
	if receipt.ID == "" && err != nil {
		return nil, err
	}
	return &receipt, err
}
