// Package document_repo provides PostgreSQL implementations of the document
// repositories. A document is a header row plus ordered line rows.
package document_repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/core/id"
	"pharmadesk/internal/domain"
	"pharmadesk/internal/domain/billing"
	"pharmadesk/internal/infrastructure/storage/postgres"
)

// lineRow is a stored line with its owning document.
type lineRow struct {
	DocumentID id.ID `db:"document_id"`
	LineNo     int   `db:"line_no"`
	billing.LineItem
}

var lineColumns = postgres.ExtractDBColumns[billing.LineItem]()

// BaseDocumentRepo implements domain.DocumentRepository over a header table
// and a lines table.
type BaseDocumentRepo[T domain.Document] struct {
	db         postgres.QuerierProvider
	tableName  string
	linesTable string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T domain.Document](
	db postgres.QuerierProvider,
	tableName, linesTable string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		db:         db,
		tableName:  tableName,
		linesTable: linesTable,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the header row.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update rewrites the header when the stored version still matches and
// stores the new version back into doc.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, doc T) error {
	h := doc.Header()
	data := postgres.StructToMap(doc)

	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "created_at", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(values).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": h.ID, "version": h.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	err = r.db.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&h.Version, &h.UpdatedAt)
	if pgxscan.NotFound(err) {
		return apperror.NewConcurrentModification(r.tableName, h.ID)
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	return nil
}

// Delete removes the header and its lines.
func (r *BaseDocumentRepo[T]) Delete(ctx context.Context, docID id.ID) error {
	q := r.db.GetQuerier(ctx)

	if _, err := q.Exec(ctx, "DELETE FROM "+r.linesTable+" WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	result, err := q.Exec(ctx, "DELETE FROM "+r.tableName+" WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, docID)
	}
	return nil
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// GetByID retrieves a header by ID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}), docID)
}

// GetForUpdate retrieves a header and locks its row until the transaction ends.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}).Suffix("FOR UPDATE"), docID)
}

func (r *BaseDocumentRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, docID id.ID) (T, error) {
	doc := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, docID)
		}
		return doc, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return doc, nil
}

// List returns headers matching filter, newest first.
func (r *BaseDocumentRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter = filter.Normalize()
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.applyFilter(r.baseSelect(), filter)

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.db.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}
	if result.TotalCount == 0 {
		return result, nil
	}

	sql, args, err := q.
		OrderBy("date DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

func (r *BaseDocumentRepo[T]) applyFilter(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if filter.PharmacyID != "" {
		q = q.Where(squirrel.Eq{"pharmacy_id": filter.PharmacyID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"counterparty_name": pattern},
		})
	}
	return q
}

// GetLines returns the lines of a document in entry order.
func (r *BaseDocumentRepo[T]) GetLines(ctx context.Context, docID id.ID) ([]billing.LineItem, error) {
	rows, err := r.selectLines(ctx, squirrel.Eq{"document_id": docID})
	if err != nil {
		return nil, err
	}
	lines := make([]billing.LineItem, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, row.LineItem)
	}
	return lines, nil
}

// GetLinesBatch loads the lines of several documents in one query.
func (r *BaseDocumentRepo[T]) GetLinesBatch(ctx context.Context, docIDs []id.ID) (map[id.ID][]billing.LineItem, error) {
	out := make(map[id.ID][]billing.LineItem, len(docIDs))
	if len(docIDs) == 0 {
		return out, nil
	}

	rows, err := r.selectLines(ctx, squirrel.Eq{"document_id": docIDs})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.DocumentID] = append(out[row.DocumentID], row.LineItem)
	}
	return out, nil
}

func (r *BaseDocumentRepo[T]) selectLines(ctx context.Context, where squirrel.Sqlizer) ([]lineRow, error) {
	cols := slices.Concat([]string{"document_id", "line_no"}, lineColumns)
	sql, args, err := r.Builder().
		Select(cols...).
		From(r.linesTable).
		Where(where).
		OrderBy("document_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return rows, nil
}

// SaveLines replaces the lines of a document.
func (r *BaseDocumentRepo[T]) SaveLines(ctx context.Context, docID id.ID, lines []billing.LineItem) error {
	q := r.db.GetQuerier(ctx)

	if _, err := q.Exec(ctx, "DELETE FROM "+r.linesTable+" WHERE document_id = $1", docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	cols := slices.Concat([]string{"document_id", "line_no"}, lineColumns)
	rows := make([][]any, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, append([]any{docID, i + 1}, postgres.StructValues(line, lineColumns)...))
	}

	if _, err := postgres.CopyRows(ctx, q, r.linesTable, cols, rows); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}
