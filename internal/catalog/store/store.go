package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"arvel.dev/salesline/internal/catalog"
)

type Store struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

func (s *Store) ListEmployees(ctx context.Context) ([]*catalog.Employee, error) {
	query, args, err := s.qb.
		Select("id", "name", "surname", "position", "hired_at", "created_at").
		From("employees").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []*catalog.Employee{}
	for rows.Next() {
		var e catalog.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Surname, &e.Position, &e.HiredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, &e)
	}
	return employees, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	query, args, err := s.qb.
		Select("id", "name", "price", "stock", "created_at").
		From("products").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *Store) ListSales(ctx context.Context) ([]*catalog.Sale, error) {
	query, args, err := s.qb.
		Select("id", "product_id", "employee_id", "quantity", "total", "sold_at").
		From("sales").
		OrderBy("sold_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []*catalog.Sale{}
	for rows.Next() {
		var sale catalog.Sale
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.EmployeeID, &sale.Quantity, &sale.Total, &sale.SoldAt); err != nil {
			return nil, err
		}
		sales = append(sales, &sale)
	}
	return sales, rows.Err()
}
