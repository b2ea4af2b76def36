package bigquery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/SscSPs/holistic_money/internal/apperrors"
	"github.com/google/uuid"
	"golang.org/x/oauth2/google"
	bq "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	defaultPollInterval = time.Second
	queryTimeoutMs      = 10_000
	jobStateDone        = "DONE"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Client is a thin wrapper over the BigQuery REST service bound to one project.
type Client struct {
	svc          *bq.Service
	projectID    string
	location     string
	pollInterval time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPollInterval sets how often unfinished jobs are polled.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewClient creates a BigQuery client for projectID. When credentialsFile is set
// the service account key in it is used, otherwise application default
// credentials apply. Extra API options (endpoint, auth) are passed through.
func NewClient(ctx context.Context, projectID, location, credentialsFile string, apiOpts []option.ClientOption, opts ...ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("bigquery project id cannot be empty")
	}
	if credentialsFile != "" {
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file %s: %w", credentialsFile, err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, bq.BigqueryScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file %s: %w", credentialsFile, err)
		}
		apiOpts = append([]option.ClientOption{option.WithCredentials(creds)}, apiOpts...)
	}
	svc, err := bq.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery service: %w", err)
	}
	c := &Client{svc: svc, projectID: projectID, location: location, pollInterval: defaultPollInterval}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ProjectID returns the project the client is bound to.
func (c *Client) ProjectID() string {
	return c.projectID
}

// tablePath renders a fully qualified, back-quoted table reference for SQL.
func (c *Client) tablePath(dataset, table string) (string, error) {
	if !identPattern.MatchString(dataset) {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid dataset name '%s'", dataset))
	}
	if !identPattern.MatchString(table) {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid table name '%s'", table))
	}
	return fmt.Sprintf("`%s.%s.%s`", c.projectID, dataset, table), nil
}

func (c *Client) tableRef(dataset, table string) *bq.TableReference {
	return &bq.TableReference{ProjectId: c.projectID, DatasetId: dataset, TableId: table}
}

// resultSet is a fully paged query result.
type resultSet struct {
	fields []*bq.TableFieldSchema
	rows   []*bq.TableRow
}

// column returns the index of the named column or -1.
func (r *resultSet) column(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// cell returns the string value of row[col], or nil for NULL and missing columns.
func cell(row *bq.TableRow, col int) *string {
	if col < 0 || col >= len(row.F) || row.F[col] == nil || row.F[col].V == nil {
		return nil
	}
	switch v := row.F[col].V.(type) {
	case string:
		return &v
	default:
		s := fmt.Sprint(v)
		return &s
	}
}

// query runs a standard SQL statement with named string parameters and
// returns every result row, waiting for the job and following page tokens.
func (c *Client) query(ctx context.Context, sql string, params map[string]string) (*resultSet, error) {
	useLegacy := false
	req := &bq.QueryRequest{
		Query:        sql,
		UseLegacySql: &useLegacy,
		Location:     c.location,
		TimeoutMs:    queryTimeoutMs,
	}
	if len(params) > 0 {
		req.ParameterMode = "NAMED"
		for name, value := range params {
			req.QueryParameters = append(req.QueryParameters, &bq.QueryParameter{
				Name:           name,
				ParameterType:  &bq.QueryParameterType{Type: "STRING"},
				ParameterValue: &bq.QueryParameterValue{Value: value},
			})
		}
	}

	resp, err := c.svc.Jobs.Query(c.projectID, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("bigquery query failed: %w", err)
	}
	if len(resp.Errors) > 0 && resp.JobComplete {
		return nil, fmt.Errorf("bigquery query failed: %s", resp.Errors[0].Message)
	}

	result := &resultSet{rows: resp.Rows}
	if resp.Schema != nil {
		result.fields = resp.Schema.Fields
	}
	complete, pageToken := resp.JobComplete, resp.PageToken
	if complete && pageToken == "" {
		return result, nil
	}
	if resp.JobReference == nil {
		return nil, errors.New("bigquery query returned no job reference")
	}

	for !complete || pageToken != "" {
		if !complete {
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
		}
		call := c.svc.Jobs.GetQueryResults(c.projectID, resp.JobReference.JobId).TimeoutMs(queryTimeoutMs).Context(ctx)
		if loc := resp.JobReference.Location; loc != "" {
			call = call.Location(loc)
		}
		if complete {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bigquery query results: %w", err)
		}
		if !page.JobComplete {
			continue
		}
		if !complete {
			// First finished response starts the row stream over.
			complete = true
			result.rows = nil
			if page.Schema != nil {
				result.fields = page.Schema.Fields
			}
		}
		result.rows = append(result.rows, page.Rows...)
		pageToken = page.PageToken
	}
	return result, nil
}

// runJob inserts a job, optionally with an upload body, and waits until it is done.
func (c *Client) runJob(ctx context.Context, prefix string, config *bq.JobConfiguration, media io.Reader) (*bq.Job, error) {
	job := &bq.Job{
		Configuration: config,
		JobReference: &bq.JobReference{
			ProjectId: c.projectID,
			JobId:     prefix + "_" + uuid.NewString(),
			Location:  c.location,
		},
	}
	call := c.svc.Jobs.Insert(c.projectID, job).Context(ctx)
	if media != nil {
		call = call.Media(media, googleapi.ContentType("application/octet-stream"))
	}
	j, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to start bigquery %s job: %w", prefix, err)
	}
	return c.waitJob(ctx, j)
}

func (c *Client) waitJob(ctx context.Context, j *bq.Job) (*bq.Job, error) {
	for j.Status == nil || j.Status.State != jobStateDone {
		if err := c.sleep(ctx); err != nil {
			return nil, err
		}
		call := c.svc.Jobs.Get(c.projectID, j.JobReference.JobId).Context(ctx)
		if loc := j.JobReference.Location; loc != "" {
			call = call.Location(loc)
		}
		next, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to poll bigquery job %s: %w", j.JobReference.JobId, err)
		}
		j = next
	}
	if j.Status.ErrorResult != nil {
		return j, fmt.Errorf("bigquery job %s failed: %s", j.JobReference.JobId, j.Status.ErrorResult.Message)
	}
	return j, nil
}

func (c *Client) sleep(ctx context.Context) error {
	t := time.NewTimer(c.pollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
