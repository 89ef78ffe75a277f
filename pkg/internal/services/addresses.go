package services

import (
	"fmt"

	"github.com/desmin2102/HostelApp/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type addressKey struct {
	CityID     uint
	DistrictID uint
	WardID     uint
	Address    string
}

func addressKeyOf(post models.RentalPost) addressKey {
	return addressKey{
		CityID:     post.CityID,
		DistrictID: post.DistrictID,
		WardID:     post.WardID,
		Address:    post.Address,
	}
}

func (v addressKey) scope(tx *gorm.DB) *gorm.DB {
	return tx.Where(
		"city_id = ? AND district_id = ? AND ward_id = ? AND address = ?",
		v.CityID, v.DistrictID, v.WardID, v.Address,
	)
}

// claimAddress reserves the address for ownerID inside tx.
// The insert relies on the unique index of address_claims, so of two owners racing
// for the same address exactly one gets the claim. A claim whose holder no longer
// lists anything there is taken over.
func claimAddress(tx *gorm.DB, ownerID uint, key addressKey) error {
	claim := models.AddressClaim{
		CityID:     key.CityID,
		DistrictID: key.DistrictID,
		WardID:     key.WardID,
		Address:    key.Address,
		OwnerID:    ownerID,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim).Error; err != nil {
		return fmt.Errorf("unable to claim address: %v", err)
	}

	var current models.AddressClaim
	if err := key.scope(tx).First(&current).Error; err != nil {
		return fmt.Errorf("unable to read address claim: %v", err)
	}
	if current.OwnerID == ownerID {
		return nil
	}

	var live int64
	if err := key.scope(tx.Model(&models.RentalPost{})).
		Where("owner_id = ?", current.OwnerID).
		Count(&live).Error; err != nil {
		return fmt.Errorf("unable to check address claim: %v", err)
	}
	if live > 0 {
		return NewDuplicateAddressError("another owner already lists this address")
	}

	res := tx.Model(&models.AddressClaim{}).
		Where("id = ? AND owner_id = ?", current.ID, current.OwnerID).
		Update("owner_id", ownerID)
	if res.Error != nil {
		return fmt.Errorf("unable to take over address claim: %v", res.Error)
	} else if res.RowsAffected == 0 {
		return NewDuplicateAddressError("another owner already lists this address")
	}

	log.Debug().
		Uint("claim", current.ID).
		Uint("from", current.OwnerID).
		Uint("to", ownerID).
		Msg("Took over a stale address claim...")
	return nil
}

// releaseAddress drops the owner's claim once none of their posts use the address any more.
func releaseAddress(tx *gorm.DB, ownerID uint, key addressKey) error {
	var remaining int64
	if err := key.scope(tx.Model(&models.RentalPost{})).
		Where("owner_id = ?", ownerID).
		Count(&remaining).Error; err != nil {
		return fmt.Errorf("unable to check address usage: %v", err)
	}
	if remaining > 0 {
		return nil
	}

	if err := key.scope(tx).
		Where("owner_id = ?", ownerID).
		Delete(&models.AddressClaim{}).Error; err != nil {
		return fmt.Errorf("unable to release address claim: %v", err)
	}
	return nil
}
