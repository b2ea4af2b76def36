package bigquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	portsrepo "github.com/SscSPs/holistic_money/internal/core/ports/repositories"
	"github.com/SscSPs/holistic_money/internal/utils"
	bq "google.golang.org/api/bigquery/v2"
)

// StagingTableTTL bounds how long an abandoned staging table survives.
const StagingTableTTL = 24 * time.Hour

// exportTimestampLayout keeps microsecond precision, the finest BigQuery stores.
const exportTimestampLayout = "2006-01-02T15:04:05.999999Z07:00"

// CommentWarehouse keeps the analytics replica of tenant comments.
type CommentWarehouse struct {
	client        *Client
	commentsTable string
	latestView    string
	now           func() time.Time
}

// NewCommentWarehouse creates a warehouse that replaces commentsTable and
// maintains latestView over it.
func NewCommentWarehouse(client *Client, commentsTable, latestView string) *CommentWarehouse {
	return &CommentWarehouse{client: client, commentsTable: commentsTable, latestView: latestView, now: time.Now}
}

var _ portsrepo.CommentWarehouse = (*CommentWarehouse)(nil)

func commentSchema() *bq.TableSchema {
	return &bq.TableSchema{Fields: []*bq.TableFieldSchema{
		{Name: "comment_id", Type: "STRING"},
		{Name: "entry_id", Type: "STRING"},
		{Name: "comment_text", Type: "STRING"},
		{Name: "created_by", Type: "STRING"},
		{Name: "created_at", Type: "TIMESTAMP"},
		{Name: "updated_at", Type: "TIMESTAMP"},
	}}
}

func (w *CommentWarehouse) CreateStagingTable(ctx context.Context, dataset string) (string, error) {
	suffix, err := utils.RandomHex(4)
	if err != nil {
		return "", err
	}
	now := w.now()
	name := fmt.Sprintf("%s_staging_%d_%s", w.commentsTable, now.UnixMilli(), suffix)
	if _, err := w.client.tablePath(dataset, name); err != nil {
		return "", err
	}
	table := &bq.Table{
		TableReference: w.client.tableRef(dataset, name),
		Schema:         commentSchema(),
		ExpirationTime: now.Add(StagingTableTTL).UnixMilli(),
	}
	if _, err := w.client.svc.Tables.Insert(w.client.projectID, dataset, table).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to create staging table %s.%s: %w", dataset, name, err)
	}
	return name, nil
}

type exportRow struct {
	CommentID   string `json:"comment_id"`
	EntryID     string `json:"entry_id"`
	CommentText string `json:"comment_text"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (w *CommentWarehouse) LoadComments(ctx context.Context, dataset, table string, rows []domain.CommentExportRow) error {
	if len(rows) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(exportRow{
			CommentID:   r.CommentID,
			EntryID:     r.EntryID,
			CommentText: r.CommentText,
			CreatedBy:   r.CreatedBy,
			CreatedAt:   r.CreatedAt.UTC().Format(exportTimestampLayout),
			UpdatedAt:   r.UpdatedAt.UTC().Format(exportTimestampLayout),
		}); err != nil {
			return fmt.Errorf("failed to encode comment %s: %w", r.EntryID, err)
		}
	}

	config := &bq.JobConfiguration{Load: &bq.JobConfigurationLoad{
		DestinationTable:    w.client.tableRef(dataset, table),
		SourceFormat:        "NEWLINE_DELIMITED_JSON",
		WriteDisposition:    "WRITE_APPEND",
		IgnoreUnknownValues: true,
		Schema:              commentSchema(),
	}}
	if _, err := w.client.runJob(ctx, "hm_load", config, &buf); err != nil {
		return fmt.Errorf("failed to load comments into %s.%s: %w", dataset, table, err)
	}
	return nil
}

func (w *CommentWarehouse) CountRows(ctx context.Context, dataset, table string) (int64, error) {
	path, err := w.client.tablePath(dataset, table)
	if err != nil {
		return 0, err
	}
	res, err := w.client.query(ctx, "SELECT COUNT(*) AS row_count FROM "+path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows of %s.%s: %w", dataset, table, err)
	}
	if len(res.rows) == 0 {
		return 0, nil
	}
	v := cell(res.rows[0], res.column("row_count"))
	if v == nil {
		return 0, nil
	}
	return strconv.ParseInt(*v, 10, 64)
}

func (w *CommentWarehouse) TableExists(ctx context.Context, dataset, table string) (bool, error) {
	_, err := w.client.svc.Tables.Get(w.client.projectID, dataset, table).Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up table %s.%s: %w", dataset, table, err)
}

// ReplaceTable runs a single copy job, so readers of dst see either the old
// or the new contents. A failed copy leaves dst untouched.
func (w *CommentWarehouse) ReplaceTable(ctx context.Context, dataset, src, dst string) error {
	config := &bq.JobConfiguration{Copy: &bq.JobConfigurationTableCopy{
		SourceTable:       w.client.tableRef(dataset, src),
		DestinationTable:  w.client.tableRef(dataset, dst),
		WriteDisposition:  "WRITE_TRUNCATE",
		CreateDisposition: "CREATE_IF_NEEDED",
	}}
	if _, err := w.client.runJob(ctx, "hm_copy", config, nil); err != nil {
		return fmt.Errorf("failed to replace %s.%s: %w", dataset, dst, err)
	}
	return nil
}

func (w *CommentWarehouse) DropTable(ctx context.Context, dataset, table string) error {
	err := w.client.svc.Tables.Delete(w.client.projectID, dataset, table).Context(ctx).Do()
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to drop table %s.%s: %w", dataset, table, err)
	}
	return nil
}

func (w *CommentWarehouse) RefreshLatestView(ctx context.Context, dataset string) error {
	view, err := w.client.tablePath(dataset, w.latestView)
	if err != nil {
		return err
	}
	comments, err := w.client.tablePath(dataset, w.commentsTable)
	if err != nil {
		return err
	}
	// One row per entry: newest updated_at, ties broken by the larger comment_id.
	ddl := fmt.Sprintf(`
		CREATE OR REPLACE VIEW %s AS
		SELECT * EXCEPT (version_rank)
		FROM (
			SELECT c.*, ROW_NUMBER() OVER (
				PARTITION BY entry_id ORDER BY updated_at DESC, comment_id DESC
			) AS version_rank
			FROM %s c
		)
		WHERE version_rank = 1`,
		view, comments)
	if _, err := w.client.query(ctx, ddl, nil); err != nil {
		return fmt.Errorf("failed to refresh view %s.%s: %w", dataset, w.latestView, err)
	}
	return nil
}
