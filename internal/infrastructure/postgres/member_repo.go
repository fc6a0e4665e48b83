package postgres

import (
	"context"
	"fmt"
)

// MemberRepo 家庭成員查詢
type MemberRepo struct {
	db DB
}

// NewMemberRepo 創建成員 repository
func NewMemberRepo(db DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// IsMember 實作 shopping.MembershipChecker
func (r *MemberRepo) IsMember(ctx context.Context, householdID, memberID string) (bool, error) {
	query, args, err := psql.
		Select("1").
		From("household_members").
		Where("household_id = ? AND member_id = ?", householdID, memberID).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build membership query: %w", err)
	}

	var ok bool
	if err := QuerierFromCtx(ctx, r.db).QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, mapError(err, "household", householdID)
	}
	return ok, nil
}
