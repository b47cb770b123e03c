package shared

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	"driveease/shared/cache"
	"driveease/shared/constant"
	"driveease/shared/dto"
	"driveease/shared/timezone"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

// ParseOptionalBool reads a form flag. Blank or unparsable input means the
// flag was not sent.
func ParseOptionalBool(value string) *bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return nil
	}

	return &parsed
}

// ParseInt reads a form number, ignoring surrounding blanks.
func ParseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value)) //nolint:wrapcheck
}

// BuildCacheKey joins the prefix and parts with the cache key separator.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key for list queries from the pagination
// parameters and the rendered filter.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	payload, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Where  string          `json:"where"`
		Args   map[string]any  `json:"args"`
	}{params, where, args})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key payload")

		return BuildCacheKey(prefix, where)
	}

	sum := sha1.Sum(payload) //nolint:gosec

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key stored under the prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+cacheKeySeparator+constant.Asterix); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// CalculateTotalPage never reports fewer than one page.
func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// ChangedFields maps the db column of every non-zero field of data to its
// value and stamps the modification audit columns. data must be a struct;
// pointer fields count as set whenever they are non-nil.
func ChangedFields(data any, actor string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	fields := make(map[string]any, val.NumField()+2)

	for i := range val.NumField() {
		column := val.Type().Field(i).Tag.Get("db")
		if column == "" || column == "-" || val.Field(i).IsZero() {
			continue
		}

		fields[column] = val.Field(i).Interface()
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = actor

	return fields
}

// FilterByID matches one row by its primary column.
func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{dto.Filter{Field: fieldID, Value: id, Operator: dto.FilterOperatorEq, Table: table}},
	}
}
