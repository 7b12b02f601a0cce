package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gfdmit/blogicum/config"
	"github.com/gfdmit/blogicum/internal/repository"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/lib/pq"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type postgresRepository struct {
	db *sql.DB
}

func New(conf config.Postgres) (*postgresRepository, error) {
	url := fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable", conf.User, conf.Pass, conf.Host, conf.Port, conf.DB)

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %v", err)
	}
	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("db.Ping: %v", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %v", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithDatabaseInstance: %v", err)
	}
	log.Println("applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("nothing to migrate")
		} else {
			return nil, fmt.Errorf("error when migrating: %v", err)
		}
	} else {
		log.Println("migrated successfully!")
	}

	return &postgresRepository{
		db: db,
	}, nil
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch {
		case strings.Contains(pqErr.Constraint, "username"):
			return repository.ErrDuplicateUsername
		case strings.Contains(pqErr.Constraint, "email"):
			return repository.ErrDuplicateEmail
		}
	}
	return err
}

const userColumns = "id, username, email, first_name, last_name, password_hash, created_at"

func scanUser(row *sql.Row) (*repository.User, error) {
	u := &repository.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (pr postgresRepository) CreateUser(ctx context.Context, username, email, passwordHash string) (*repository.User, error) {
	row := pr.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING `+userColumns, username, email, passwordHash)
	return scanUser(row)
}

func (pr postgresRepository) GetUserByID(ctx context.Context, id int) (*repository.User, error) {
	row := pr.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (pr postgresRepository) GetUserByUsername(ctx context.Context, username string) (*repository.User, error) {
	row := pr.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (pr postgresRepository) UpdateUser(ctx context.Context, u *repository.User) (*repository.User, error) {
	row := pr.db.QueryRowContext(ctx,
		`UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4
		 WHERE id = $5 RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.ID)
	return scanUser(row)
}

func (pr postgresRepository) CreateSession(ctx context.Context, s *repository.Session) error {
	_, err := pr.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.UserID, s.ExpiresAt)
	return mapErr(err)
}

func (pr postgresRepository) GetSession(ctx context.Context, id string) (*repository.Session, error) {
	s := &repository.Session{}
	var revoked sql.NullTime
	err := pr.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if err != nil {
		return nil, mapErr(err)
	}
	if revoked.Valid {
		s.RevokedAt = &revoked.Time
	}
	return s, nil
}

func (pr postgresRepository) RevokeSession(ctx context.Context, id string) error {
	_, err := pr.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	return mapErr(err)
}

const categoryColumns = "id, title, description, slug, is_published, created_at"

func (pr postgresRepository) GetCategoryBySlug(ctx context.Context, slug string, publishedOnly bool) (*repository.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	if publishedOnly {
		q += ` AND is_published`
	}
	c := &repository.Category{}
	err := pr.db.QueryRowContext(ctx, q, slug).
		Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return c, nil
}

func (pr postgresRepository) ListCategories(ctx context.Context, publishedOnly bool) ([]repository.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if publishedOnly {
		q += ` WHERE is_published`
	}
	q += ` ORDER BY title`
	rows, err := pr.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []repository.Category{}
	for rows.Next() {
		c := repository.Category{}
		err = rows.Scan(&c.ID, &c.Title, &c.Description, &c.Slug, &c.IsPublished, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (pr postgresRepository) ListLocations(ctx context.Context, publishedOnly bool) ([]repository.Location, error) {
	q := `SELECT id, name, is_published, created_at FROM locations`
	if publishedOnly {
		q += ` WHERE is_published`
	}
	q += ` ORDER BY name`
	rows, err := pr.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []repository.Location{}
	for rows.Next() {
		l := repository.Location{}
		err = rows.Scan(&l.ID, &l.Name, &l.IsPublished, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// postSelect joins author, category and location and counts comments
// in one query so list pages never issue follow-up lookups.
const postSelect = `
SELECT p.id, p.title, p.text, p.pub_date, p.is_published, p.created_at, p.image_url,
       u.id, u.username, u.email, u.first_name, u.last_name, u.created_at,
       c.id, c.title, c.description, c.slug, c.is_published, c.created_at,
       l.id, l.name, l.is_published, l.created_at,
       COUNT(cm.id)
FROM posts p
JOIN users u ON u.id = p.author_id
JOIN categories c ON c.id = p.category_id
LEFT JOIN locations l ON l.id = p.location_id
LEFT JOIN comments cm ON cm.post_id = p.id
`

const postGroupBy = ` GROUP BY p.id, u.id, c.id, l.id`

func scanPost(rows *sql.Rows) (*repository.Post, error) {
	p := &repository.Post{}
	var (
		imageURL  sql.NullString
		locID     sql.NullInt64
		locName   sql.NullString
		locPub    sql.NullBool
		locCreate sql.NullTime
	)
	err := rows.Scan(
		&p.ID, &p.Title, &p.Text, &p.PubDate, &p.IsPublished, &p.CreatedAt, &imageURL,
		&p.Author.ID, &p.Author.Username, &p.Author.Email, &p.Author.FirstName, &p.Author.LastName, &p.Author.CreatedAt,
		&p.Category.ID, &p.Category.Title, &p.Category.Description, &p.Category.Slug, &p.Category.IsPublished, &p.Category.CreatedAt,
		&locID, &locName, &locPub, &locCreate,
		&p.CommentCount)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if locID.Valid {
		p.Location = &repository.Location{
			ID:          int(locID.Int64),
			Name:        locName.String,
			IsPublished: locPub.Bool,
			CreatedAt:   locCreate.Time,
		}
	}
	return p, nil
}

// filterConditions renders f as WHERE clauses with placeholders
// starting at $1.
func filterConditions(f repository.PostFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	if f.PublishedOnly {
		args = append(args, f.Now)
		conds = append(conds, fmt.Sprintf("p.is_published AND c.is_published AND p.pub_date <= $%d", len(args)))
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.AuthorID != 0 {
		args = append(args, f.AuthorID)
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (pr postgresRepository) ListPosts(ctx context.Context, f repository.PostFilter) ([]repository.Post, error) {
	where, args := filterConditions(f)
	q := postSelect + where + postGroupBy + ` ORDER BY p.pub_date DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := pr.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []repository.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (pr postgresRepository) CountPosts(ctx context.Context, f repository.PostFilter) (int, error) {
	where, args := filterConditions(f)
	q := `SELECT COUNT(*) FROM posts p JOIN categories c ON c.id = p.category_id` + where
	var n int
	if err := pr.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (pr postgresRepository) GetPost(ctx context.Context, id int) (*repository.Post, error) {
	rows, err := pr.db.QueryContext(ctx, postSelect+` WHERE p.id = $1`+postGroupBy, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, repository.ErrNotFound
	}
	return scanPost(rows)
}

func (pr postgresRepository) CreatePost(ctx context.Context, p *repository.Post) (*repository.Post, error) {
	var locID any
	if p.Location != nil {
		locID = p.Location.ID
	}
	var postID int
	err := pr.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, text, pub_date, is_published, image_url, author_id, category_id, location_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		p.Title, p.Text, p.PubDate, p.IsPublished, p.ImageURL, p.Author.ID, p.Category.ID, locID).
		Scan(&postID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pr.GetPost(ctx, postID)
}

func (pr postgresRepository) UpdatePost(ctx context.Context, p *repository.Post) (*repository.Post, error) {
	var locID any
	if p.Location != nil {
		locID = p.Location.ID
	}
	res, err := pr.db.ExecContext(ctx,
		`UPDATE posts SET title = $1, text = $2, pub_date = $3, is_published = $4,
		        image_url = $5, category_id = $6, location_id = $7
		 WHERE id = $8`,
		p.Title, p.Text, p.PubDate, p.IsPublished, p.ImageURL, p.Category.ID, locID, p.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return pr.GetPost(ctx, p.ID)
}

func (pr postgresRepository) DeletePost(ctx context.Context, id int) error {
	res, err := pr.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const commentSelect = `
SELECT cm.id, cm.post_id, cm.text, cm.created_at,
       u.id, u.username, u.email, u.first_name, u.last_name, u.created_at
FROM comments cm
JOIN users u ON u.id = cm.author_id
`

func scanComment(rows *sql.Rows) (*repository.Comment, error) {
	c := &repository.Comment{}
	err := rows.Scan(&c.ID, &c.PostID, &c.Text, &c.CreatedAt,
		&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName, &c.Author.LastName, &c.Author.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (pr postgresRepository) CreateComment(ctx context.Context, postID, authorID int, text string) (*repository.Comment, error) {
	var commentID int
	err := pr.db.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, author_id, text) VALUES ($1, $2, $3) RETURNING id`,
		postID, authorID, text).Scan(&commentID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pr.GetComment(ctx, postID, commentID)
}

func (pr postgresRepository) GetComment(ctx context.Context, postID, commentID int) (*repository.Comment, error) {
	rows, err := pr.db.QueryContext(ctx,
		commentSelect+` WHERE cm.id = $1 AND cm.post_id = $2`, commentID, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, repository.ErrNotFound
	}
	return scanComment(rows)
}

func (pr postgresRepository) ListComments(ctx context.Context, postID int) ([]repository.Comment, error) {
	rows, err := pr.db.QueryContext(ctx,
		commentSelect+` WHERE cm.post_id = $1 ORDER BY cm.created_at`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []repository.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (pr postgresRepository) UpdateComment(ctx context.Context, postID, commentID int, text string) (*repository.Comment, error) {
	res, err := pr.db.ExecContext(ctx,
		`UPDATE comments SET text = $1 WHERE id = $2 AND post_id = $3`, text, commentID, postID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return pr.GetComment(ctx, postID, commentID)
}

func (pr postgresRepository) DeleteComment(ctx context.Context, postID, commentID int) error {
	res, err := pr.db.ExecContext(ctx,
		`DELETE FROM comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
