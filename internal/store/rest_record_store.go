package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
	"github.com/MKhiriev/go-chat-profiles/internal/utils"
	"github.com/MKhiriev/go-chat-profiles/models"
	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgerrcode"
	"github.com/tidwall/gjson"
)

const (
	restPathPrefix = "/rest/v1/"

	headerAPIKey = "apikey"
	headerPrefer = "Prefer"

	preferRepresentation = "return=representation"
)

// restRecordStore implements [RecordStore] on top of a PostgREST-compatible
// hosted database (Supabase style). Filters are written in the PostgREST
// query grammar:
//
//	GET /rest/v1/profiles?display_name=like.an*&order=created_at.desc&limit=20
type restRecordStore struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewRESTRecordStore constructs a [RecordStore] talking to the hosted store
// described by cfg.
func NewRESTRecordStore(cfg config.REST, logger *logger.Logger) RecordStore {
	logger.Debug().Str("url", cfg.URL).Msg("creating rest record store")

	client := utils.NewHTTPClient(strings.TrimSuffix(cfg.URL, "/"), cfg.RequestTimeout, map[string]string{
		headerAPIKey:    cfg.APIKey,
		"Authorization": "Bearer " + cfg.APIKey,
		"Content-Type":  "application/json",
	})

	client.
		SetRetryCount(maxAttempts - 1).
		SetRetryWaitTime(retryBackoff).
		SetRetryMaxWaitTime(retryBackoff * maxAttempts).
		AddRetryCondition(retryableRead).
		AddRetryHook(func(resp *resty.Response, err error) {
			event := logger.Warn().Err(err)
			if resp != nil {
				event = event.Int("status", resp.StatusCode())
			}
			event.Msg("retrying hosted store read")
		})

	return &restRecordStore{
		client: client,
		logger: logger,
	}
}

// retryableRead retries reads that failed in transport or with a 5xx.
// Writes are never repeated.
func retryableRead(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

func (s *restRecordStore) Get(ctx context.Context, table models.Table, id string) (models.Record, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)

	records, err := s.do(ctx, table, http.MethodGet, query, nil)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*restRecordStore.Get").Str("table", table.Name).Msg("error reading record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}

	return records[0], nil
}

func (s *restRecordStore) Create(ctx context.Context, table models.Table, rec models.Record) (models.Record, error) {
	encoded, err := table.Encode(rec)
	if err != nil {
		return nil, err
	}

	records, err := s.do(ctx, table, http.MethodPost, nil, encoded)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*restRecordStore.Create").Str("table", table.Name).Msg("error inserting record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: insert returned no row", ErrExecutingStatement)
	}

	return records[0], nil
}

func (s *restRecordStore) Update(ctx context.Context, table models.Table, id string, changes models.Record) (models.Record, error) {
	if len(changes) == 0 {
		return s.Get(ctx, table, id)
	}

	encoded, err := table.Encode(changes)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("id", "eq."+id)

	records, err := s.do(ctx, table, http.MethodPatch, query, encoded)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*restRecordStore.Update").Str("table", table.Name).Msg("error updating record")
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}

	return records[0], nil
}

func (s *restRecordStore) Delete(ctx context.Context, table models.Table, id string) error {
	query := url.Values{}
	query.Set("id", "eq."+id)

	records, err := s.do(ctx, table, http.MethodDelete, query, nil)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*restRecordStore.Delete").Str("table", table.Name).Msg("error deleting record")
		return err
	}
	if len(records) == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (s *restRecordStore) Read(ctx context.Context, table models.Table, params models.SearchParams) ([]models.Record, error) {
	query, err := restQuery(table, params)
	if err != nil {
		return nil, err
	}

	records, err := s.do(ctx, table, http.MethodGet, query, nil)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*restRecordStore.Read").Str("table", table.Name).Msg("error reading records")
		return nil, err
	}

	return records, nil
}

func (s *restRecordStore) Ping(ctx context.Context) error {
	resp, err := s.client.R().SetContext(ctx).Get(restPathPrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrStoreUnavailable, resp.StatusCode())
	}
	return nil
}

// do sends one request and decodes the JSON array of rows it returns.
func (s *restRecordStore) do(ctx context.Context, table models.Table, method string, query url.Values, body models.Record) ([]models.Record, error) {
	req := s.client.R().
		SetContext(ctx).
		SetHeader(headerPrefer, preferRepresentation)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(map[string]any(body))
	}

	resp, err := req.Execute(method, restPathPrefix+table.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if resp.IsError() {
		return nil, restError(resp)
	}

	return decodeRows(table, resp.Body())
}

func decodeRows(table models.Table, body []byte) ([]models.Record, error) {
	if len(body) == 0 {
		return nil, nil
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrScanningRows)
	}

	var records []models.Record
	for _, row := range parsed.Array() {
		raw, ok := row.Value().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: row is not an object", ErrScanningRow)
		}
		rec, err := table.Normalize(models.Record(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// restError maps a PostgREST error response onto the store sentinels. The
// body carries the PostgreSQL SQLSTATE in "code".
func restError(resp *resty.Response) error {
	body := gjson.ParseBytes(resp.Body())
	code := body.Get("code").String()
	message := body.Get("message").String()
	if message == "" {
		message = resp.Status()
	}

	switch {
	case code == pgerrcode.UniqueViolation, resp.StatusCode() == http.StatusConflict && code == "":
		return fmt.Errorf("%w: %s", ErrRecordAlreadyExists, message)
	case code == pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, message)
	case resp.StatusCode() >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, message)
	case code == pgerrcode.UndefinedColumn, code == pgerrcode.UndefinedTable:
		return fmt.Errorf("%w: %s", ErrInvalidFilter, message)
	}
	return fmt.Errorf("%w: status %d: %s", ErrExecutingQuery, resp.StatusCode(), message)
}

// restQuery converts search parameters to PostgREST query parameters.
func restQuery(table models.Table, params models.SearchParams) (url.Values, error) {
	query := url.Values{}

	for _, f := range params.Filters {
		col, ok := table.Column(f.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no column %q", ErrInvalidFilter, table.Name, f.Field)
		}
		value, err := restFilter(col, f)
		if err != nil {
			return nil, err
		}
		query.Add(f.Field, value)
	}

	if len(params.Orders) > 0 {
		items := make([]string, 0, len(params.Orders))
		for _, o := range params.Orders {
			if !table.Has(o.Field) {
				return nil, fmt.Errorf("%w: cannot order %s by %q", ErrInvalidFilter, table.Name, o.Field)
			}
			direction := ".asc"
			if o.Desc {
				direction = ".desc"
			}
			items = append(items, o.Field+direction)
		}
		query.Set("order", strings.Join(items, ","))
	}

	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	return query, nil
}

func restFilter(col models.Column, f models.Filter) (string, error) {
	switch f.Op {
	case models.OpContains:
		item, ok := f.Value.(string)
		if col.Kind != models.KindList || !ok {
			return "", fmt.Errorf("%w: contains on %q", ErrInvalidFilter, f.Field)
		}
		return "match." + restContainsPattern(item), nil
	case models.OpIn:
		list, ok := f.Value.([]any)
		if !ok {
			return "", fmt.Errorf("%w: in expects a list", ErrInvalidFilter)
		}
		items := make([]string, 0, len(list))
		for _, v := range list {
			items = append(items, quoteRESTValue(restValue(v)))
		}
		return "in.(" + strings.Join(items, ",") + ")", nil
	case models.OpEq, "":
		return "eq." + restValue(f.Value), nil
	case models.OpNeq, models.OpGt, models.OpGte, models.OpLt, models.OpLte, models.OpLike:
		return string(f.Op) + "." + restValue(f.Value), nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Op)
}

func restValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case time.Time:
		return value.UTC().Format(time.RFC3339Nano)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case bool:
		return strconv.FormatBool(value)
	}
	return fmt.Sprint(v)
}

// restContainsPattern is a POSIX regular expression matching a JSON list
// text that holds item as a whole element. The item is JSON encoded the way
// [models.Table.Encode] writes it, then quoted, so it matches case
// sensitively and without wildcards.
func restContainsPattern(item string) string {
	raw, _ := json.Marshal(item)
	return `[\[,]\s*` + regexp.QuoteMeta(string(raw)) + `\s*[],]`
}

// quoteRESTValue double-quotes list items holding PostgREST reserved characters.
func quoteRESTValue(s string) string {
	if !strings.ContainsAny(s, `,()":`) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
