package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// uniqueViolation распознаёт нарушение уникальности и от pgx, и от
// драйверов с TranslateError (sqlite в тестах); имя ограничения есть только у pgx.
func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return pgErr.ConstraintName, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}
	return "", false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern строит шаблон «содержит»; %, _ и \ из ввода ищутся буквально.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// containsExpr – регистронезависимое «содержит» для колонки, в паре с likePattern.
func containsExpr(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}
