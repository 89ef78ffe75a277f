package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ListingCriteria is the optional set of predicates shared by both listing kinds.
// A nil or empty field does not filter.
type ListingCriteria struct {
	City      *uint
	Districts []uint
	Wards     []uint
	Category  *uint
	Tags      []string
	MinPrice  *int
	MaxPrice  *int
	Near      string
}

// ListingKind lets the filter engine stay generic over rentals and tenant requests.
// Every scope is written in terms of what the kind stores, a kind that has
// nothing to match a criterion returns tx unchanged.
type ListingKind interface {
	Model() any
	Table(tx *gorm.DB) string
	TagJoinTable(tx *gorm.DB) (table string, column string)
	ScopeDistricts(tx *gorm.DB, districts []uint) *gorm.DB
	ScopeWards(tx *gorm.DB, wards []uint, districts []uint) *gorm.DB
	ScopePriceRange(tx *gorm.DB, min, max int) *gorm.DB
	ScopeNear(tx *gorm.DB, prefix string) *gorm.DB
}

var (
	Rentals  ListingKind = RentalListing{}
	Requests ListingKind = RequestListing{}
)

type RentalListing struct{}

func (RentalListing) Model() any { return &models.RentalPost{} }

func (RentalListing) Table(tx *gorm.DB) string {
	return tx.NamingStrategy.TableName("RentalPost")
}

func (RentalListing) TagJoinTable(tx *gorm.DB) (string, string) {
	return tx.NamingStrategy.JoinTableName("rental_tags"), "rental_post_id"
}

func (v RentalListing) ScopeDistricts(tx *gorm.DB, districts []uint) *gorm.DB {
	return tx.Where(v.Table(tx)+".district_id IN ?", districts)
}

func (v RentalListing) ScopeWards(tx *gorm.DB, wards []uint, districts []uint) *gorm.DB {
	return tx.Where(
		fmt.Sprintf("%s.ward_id IN (SELECT id FROM %s WHERE id IN ? AND district_id IN ?)",
			v.Table(tx), tx.NamingStrategy.TableName("Ward")),
		wards, districts,
	)
}

func (v RentalListing) ScopePriceRange(tx *gorm.DB, min, max int) *gorm.DB {
	return tx.Where(v.Table(tx)+".price BETWEEN ? AND ?", min, max)
}

func (v RentalListing) ScopeNear(tx *gorm.DB, prefix string) *gorm.DB {
	return tx.Where(v.Table(tx)+".geohash LIKE ?", prefix+"%")
}

type RequestListing struct{}

func (RequestListing) Model() any { return &models.TenantRequest{} }

func (RequestListing) Table(tx *gorm.DB) string {
	return tx.NamingStrategy.TableName("TenantRequest")
}

func (RequestListing) TagJoinTable(tx *gorm.DB) (string, string) {
	return tx.NamingStrategy.JoinTableName("request_tags"), "tenant_request_id"
}

func (v RequestListing) ScopeDistricts(tx *gorm.DB, districts []uint) *gorm.DB {
	return tx.Where(
		fmt.Sprintf("%s.id IN (SELECT tenant_request_id FROM %s WHERE district_id IN ?)",
			v.Table(tx), tx.NamingStrategy.JoinTableName("request_districts")),
		districts,
	)
}

func (v RequestListing) ScopeWards(tx *gorm.DB, wards []uint, districts []uint) *gorm.DB {
	return tx.Where(
		fmt.Sprintf("%s.id IN (SELECT rw.tenant_request_id FROM %s rw JOIN %s w ON w.id = rw.ward_id WHERE rw.ward_id IN ? AND w.district_id IN ?)",
			v.Table(tx), tx.NamingStrategy.JoinTableName("request_wards"), tx.NamingStrategy.TableName("Ward")),
		wards, districts,
	)
}

// ScopePriceRange matches requests whose wanted range intersects [min, max].
// A missing bound on the request is open ended.
func (v RequestListing) ScopePriceRange(tx *gorm.DB, min, max int) *gorm.DB {
	table := v.Table(tx)
	return tx.Where(
		fmt.Sprintf("(%s.max_price IS NULL OR %s.max_price >= ?) AND (%s.min_price IS NULL OR %s.min_price <= ?)",
			table, table, table, table),
		min, max,
	)
}

func (RequestListing) ScopeNear(tx *gorm.DB, prefix string) *gorm.DB {
	return tx
}

// FilterListings applies every present criterion with AND semantics.
// The result is a fresh session so callers may count and list from it.
func FilterListings(tx *gorm.DB, kind ListingKind, criteria ListingCriteria) *gorm.DB {
	table := kind.Table(tx)
	tx = tx.Model(kind.Model())

	if criteria.City != nil {
		tx = tx.Where(table+".city_id = ?", *criteria.City)
	}
	if len(criteria.Districts) > 0 {
		tx = kind.ScopeDistricts(tx, criteria.Districts)
		if len(criteria.Wards) > 0 {
			tx = kind.ScopeWards(tx, criteria.Wards, criteria.Districts)
		}
	}
	if criteria.Category != nil {
		tx = tx.Where(table+".category_id = ?", *criteria.Category)
	}
	if len(criteria.Tags) > 0 {
		tx = FilterListingsWithTags(tx, kind, criteria.Tags)
	}
	if criteria.MinPrice != nil && criteria.MaxPrice != nil {
		tx = kind.ScopePriceRange(tx, *criteria.MinPrice, *criteria.MaxPrice)
	}
	if len(criteria.Near) > 0 {
		tx = kind.ScopeNear(tx, criteria.Near)
	}

	return tx.Session(&gorm.Session{})
}

// FilterListingsWithTags keeps items carrying any of the names.
// A subquery is used instead of a join so an item with several matching tags is returned once.
func FilterListingsWithTags(tx *gorm.DB, kind ListingKind, names []string) *gorm.DB {
	joinTable, column := kind.TagJoinTable(tx)
	return tx.Where(
		fmt.Sprintf("%s.id IN (SELECT jt.%s FROM %s jt JOIN %s t ON t.id = jt.tag_id WHERE t.name IN ?)",
			kind.Table(tx), column, joinTable, tx.NamingStrategy.TableName("Tag")),
		names,
	)
}

// FilterRentalVisibility hides unapproved and inactive posts from everyone but staff.
// Staff may narrow to one approval state.
func FilterRentalVisibility(tx *gorm.DB, user *models.Account, approved *bool) *gorm.DB {
	table := Rentals.Table(tx)
	if user == nil || !user.IsStaff() {
		return tx.Where(table+".is_approved = ? AND "+table+".active = ?", true, true)
	}
	if approved != nil {
		tx = tx.Where(table+".is_approved = ?", *approved)
	}
	return tx
}

func FilterRentalWithOwner(tx *gorm.DB, ownerID uint) *gorm.DB {
	return tx.Where(Rentals.Table(tx)+".owner_id = ?", ownerID)
}

func FilterRequestVisibility(tx *gorm.DB, user *models.Account) *gorm.DB {
	if user != nil && user.IsStaff() {
		return tx
	}
	return tx.Where(Requests.Table(tx)+".active = ?", true)
}

func FilterRequestWithTenant(tx *gorm.DB, tenantID uint) *gorm.DB {
	return tx.Where(Requests.Table(tx)+".tenant_id = ?", tenantID)
}

func CountListings(tx *gorm.DB, kind ListingKind) (int64, error) {
	var count int64
	if err := tx.Session(&gorm.Session{}).Model(kind.Model()).Count(&count).Error; err != nil {
		return count, err
	}

	return count, nil
}

// ParseListingCriteria reads the criteria from query values.
// district and ward may repeat and may also hold comma separated ids.
func ParseListingCriteria(values url.Values) (ListingCriteria, error) {
	var criteria ListingCriteria
	var err error

	if criteria.City, err = parseOptionalID(values, "city"); err != nil {
		return criteria, err
	}
	if criteria.Category, err = parseOptionalID(values, "category"); err != nil {
		return criteria, err
	}
	if criteria.Districts, err = parseIDList(values, "district"); err != nil {
		return criteria, err
	}
	if criteria.Wards, err = parseIDList(values, "ward"); err != nil {
		return criteria, err
	}
	criteria.Tags = ParseTags(strings.Join(values["tags"], ","))

	if criteria.MinPrice, err = parseOptionalInt(values, "min_price"); err != nil {
		return criteria, err
	}
	if criteria.MaxPrice, err = parseOptionalInt(values, "max_price"); err != nil {
		return criteria, err
	}
	if criteria.MinPrice != nil && criteria.MaxPrice != nil && *criteria.MinPrice > *criteria.MaxPrice {
		return criteria, NewValidationError("min_price", "min_price must not be greater than max_price")
	}

	if near := strings.ToLower(strings.TrimSpace(values.Get("near"))); len(near) > 0 {
		if !IsGeohashPrefix(near) {
			return criteria, NewValidationError("near", "near must be a geohash prefix")
		}
		criteria.Near = near
	}

	return criteria, nil
}

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

func IsGeohashPrefix(s string) bool {
	if len(s) == 0 || len(s) > 12 {
		return false
	}
	for _, ch := range s {
		if !strings.ContainsRune(geohashAlphabet, ch) {
			return false
		}
	}
	return true
}

func parseOptionalID(values url.Values, key string) (*uint, error) {
	raw := strings.TrimSpace(values.Get(key))
	if len(raw) == 0 {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, NewValidationError(key, key+" must be a positive integer")
	}
	return lo.ToPtr(uint(id)), nil
}

func parseOptionalInt(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if len(raw) == 0 {
		return nil, nil
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewValidationError(key, key+" must be an integer")
	}
	return &num, nil
}

func parseIDList(values url.Values, key string) ([]uint, error) {
	var out []uint
	for _, item := range values[key] {
		for _, token := range strings.Split(item, ",") {
			token = strings.TrimSpace(token)
			if len(token) == 0 {
				continue
			}
			id, err := strconv.ParseUint(token, 10, 64)
			if err != nil || id == 0 {
				return nil, NewValidationError(key, key+" must be a list of positive integers")
			}
			out = append(out, uint(id))
		}
	}
	return lo.Uniq(out), nil
}

func PreloadRental(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tags").
		Preload("Category").
		Preload("City").
		Preload("District").
		Preload("Ward").
		Preload("Owner").
		Preload("Images")
}

func PreloadRequest(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tags").
		Preload("Category").
		Preload("City").
		Preload("Districts").
		Preload("Wards").
		Preload("Tenant")
}

func ListRentalPosts(tx *gorm.DB, take int, offset int) ([]models.RentalPost, error) {
	if take > 100 {
		take = 100
	}

	var items []models.RentalPost
	if err := PreloadRental(tx.Session(&gorm.Session{})).
		Limit(take).Offset(offset).
		Order(Rentals.Table(tx) + ".created_at DESC").
		Order(Rentals.Table(tx) + ".id DESC").
		Find(&items).Error; err != nil {
		return items, err
	}

	return items, nil
}

func ListTenantRequests(tx *gorm.DB, take int, offset int) ([]models.TenantRequest, error) {
	if take > 100 {
		take = 100
	}

	var items []models.TenantRequest
	if err := PreloadRequest(tx.Session(&gorm.Session{})).
		Limit(take).Offset(offset).
		Order(Requests.Table(tx) + ".created_at DESC").
		Order(Requests.Table(tx) + ".id DESC").
		Find(&items).Error; err != nil {
		return items, err
	}

	return items, nil
}
