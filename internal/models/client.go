package models

import "time"

// Client is the row shape of the clients table.
type Client struct {
	ClientID          int64     `db:"client_id"`
	ClientName        string    `db:"client_name"`
	BigQueryDataset   string    `db:"bigquery_dataset"`
	CommentsTableName string    `db:"comments_table_name"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
