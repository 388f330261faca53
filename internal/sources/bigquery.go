package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	bigQueryScheme   = "bigquery"
	defaultWordField = "word_key"
)

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	projectID  = regexp.MustCompile(`^[a-z][a-z0-9.:-]*$`)
)

// BigQueryOptions select the words to read from a BigQuery table.
type BigQueryOptions struct {
	Project string
	Dataset string
	Table   string
	// Column holds the words. Defaults to "word_key".
	Column string
	// Scope, when set, restricts rows to those with a matching scope column.
	Scope string
	// WordLength, when positive, pushes the length check into the query.
	WordLength int
}

// ParseBigQueryURI parses bigquery://project/dataset.table[?scope=..&column=..&length=..].
func ParseBigQueryURI(raw string) (BigQueryOptions, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return BigQueryOptions{}, fmt.Errorf("parsing bigquery uri %q: %w", raw, err)
	}
	if u.Scheme != bigQueryScheme {
		return BigQueryOptions{}, fmt.Errorf("bigquery uri %q: unexpected scheme %q", raw, u.Scheme)
	}

	dataset, table, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), ".")
	if u.Host == "" || !ok || dataset == "" || table == "" {
		return BigQueryOptions{}, fmt.Errorf("bigquery uri %q: want bigquery://project/dataset.table", raw)
	}

	q := u.Query()
	opts := BigQueryOptions{
		Project: u.Host,
		Dataset: dataset,
		Table:   table,
		Column:  q.Get("column"),
		Scope:   q.Get("scope"),
	}
	if l := q.Get("length"); l != "" {
		if opts.WordLength, err = strconv.Atoi(l); err != nil {
			return BigQueryOptions{}, fmt.Errorf("bigquery uri %q: bad length: %w", raw, err)
		}
	}
	return opts, nil
}

// URI is the inverse of ParseBigQueryURI.
func (o BigQueryOptions) URI() string {
	u := url.URL{Scheme: bigQueryScheme, Host: o.Project, Path: "/" + o.Dataset + "." + o.Table}
	q := url.Values{}
	if o.Column != "" {
		q.Set("column", o.Column)
	}
	if o.Scope != "" {
		q.Set("scope", o.Scope)
	}
	if o.WordLength > 0 {
		q.Set("length", strconv.Itoa(o.WordLength))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// query builds the SQL text and its parameters. Table and column names
// cannot be parameterised, so they are validated as plain identifiers.
func (o BigQueryOptions) query() (string, []bigquery.QueryParameter, error) {
	column := o.Column
	if column == "" {
		column = defaultWordField
	}
	if !projectID.MatchString(o.Project) {
		return "", nil, fmt.Errorf("invalid bigquery project %q", o.Project)
	}
	for _, id := range []string{o.Dataset, o.Table, column} {
		if !identifier.MatchString(id) {
			return "", nil, fmt.Errorf("invalid bigquery identifier %q", id)
		}
	}

	sql := fmt.Sprintf("SELECT %s FROM `%s.%s.%s` WHERE %s IS NOT NULL", column, o.Project, o.Dataset, o.Table, column)
	var params []bigquery.QueryParameter
	if o.Scope != "" {
		sql += " AND scope = @scope"
		params = append(params, bigquery.QueryParameter{Name: "scope", Value: o.Scope})
	}
	if o.WordLength > 0 {
		sql += fmt.Sprintf(" AND BYTE_LENGTH(%s) = @length", column)
		params = append(params, bigquery.QueryParameter{Name: "length", Value: o.WordLength})
	}
	return sql, params, nil
}

// BigQuerySource streams words from a BigQuery query. Rows carry no line
// terminator.
type BigQuerySource struct {
	client *bigquery.Client
	it     *bigquery.RowIterator
}

func OpenBigQuery(ctx context.Context, opts BigQueryOptions) (*BigQuerySource, error) {
	sql, params, err := opts.query()
	if err != nil {
		return nil, err
	}

	client, err := bigquery.NewClient(ctx, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}

	q := client.Query(sql)
	q.Parameters = params
	q.Location = "US"

	job, err := q.Run(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("job.Read: %w", err)
	}
	return &BigQuerySource{client: client, it: it}, nil
}

func (s *BigQuerySource) Next() (string, error) {
	var row []bigquery.Value
	err := s.it.Next(&row)
	if errors.Is(err, iterator.Done) {
		return "", io.EOF
	}
	if err != nil {
		return "", fmt.Errorf("it.Next: %w", err)
	}
	if len(row) == 0 {
		return "", fmt.Errorf("empty bigquery row")
	}
	word, ok := row[0].(string)
	if !ok {
		return "", fmt.Errorf("row[0] is not a string: %v", row[0])
	}
	return word, nil
}

func (s *BigQuerySource) Close() error {
	return s.client.Close()
}
