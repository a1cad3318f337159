package promoControllers

import (
	"strings"
	"time"

	"github.com/IV-YADOV/eternal-tick/models"
	"gorm.io/gorm"
)

// Rejection is a promo failure the customer can act on (try another code or
// none). It is an error so it travels through the usual return path.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

type EvalResult struct {
	PromoID       uint   `json:"promo_id"`
	Code          string `json:"code"`
	DiscountCents int64  `json:"discount_cents"`
}

// NormalizeCode brings a code to its canonical form: trimmed, uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func clamp64(n, min, max int64) int64 {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// CalcDiscountCents computes the discount for a promo against a subtotal.
// Percent amounts are clamped to [0,100] here, not at storage time, since
// legacy rows may hold out-of-range values. The result never exceeds the subtotal.
func CalcDiscountCents(kind models.PromoKind, amount, subtotalCents int64) int64 {
	var discount int64
	if kind == models.PromoKindPercent {
		pct := clamp64(amount, 0, 100)
		discount = subtotalCents * pct / 100
	} else {
		discount = amount
	}
	return clamp64(discount, 0, subtotalCents)
}

// evaluate runs the check chain against an already-loaded promo row,
// short-circuiting on the first failure. usedByUser is called lazily so the
// per-user count query only runs when a limit is actually set. No side
// effects: callers re-run it inside the checkout transaction.
func evaluate(promo *models.PromoCode, subtotalCents int64, userID *string, usedByUser func() (int64, error), now time.Time) (*EvalResult, error) {
	if !promo.IsActive {
		return nil, &Rejection{Reason: "promo code is disabled"}
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, &Rejection{Reason: "promo code is not active yet"}
	}
	if promo.ExpiresAt != nil && now.After(*promo.ExpiresAt) {
		return nil, &Rejection{Reason: "promo code has expired"}
	}
	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		return nil, &Rejection{Reason: "promo code usage limit reached"}
	}
	if promo.MinOrderCents != nil && subtotalCents < *promo.MinOrderCents {
		return nil, &Rejection{Reason: "order amount is below the minimum for this promo code"}
	}
	if promo.OwnerUserID != nil {
		if userID == nil {
			return nil, &Rejection{Reason: "this promo code is personal, log in to use it"}
		}
		if *userID != *promo.OwnerUserID {
			return nil, &Rejection{Reason: "this promo code belongs to another account"}
		}
	}
	if promo.PerUserLimit != nil && userID != nil {
		used, err := usedByUser()
		if err != nil {
			return nil, err
		}
		if used >= *promo.PerUserLimit {
			return nil, &Rejection{Reason: "you have already used this promo code"}
		}
	}

	discount := CalcDiscountCents(promo.Kind, promo.Amount, subtotalCents)
	if discount == 0 {
		return nil, &Rejection{Reason: "promo code gives no discount"}
	}

	return &EvalResult{
		PromoID:       promo.ID,
		Code:          promo.Code,
		DiscountCents: discount,
	}, nil
}

// Evaluate decides whether a code applies to a subtotal and computes the
// discount. Deterministic given database state and clock; it is called once
// when the customer applies a code and again inside the checkout transaction,
// which is the only authoritative run.
func Evaluate(db *gorm.DB, code string, subtotalCents int64, userID *string) (*EvalResult, error) {
	canonical := NormalizeCode(code)
	if canonical == "" {
		return nil, &Rejection{Reason: "enter a promo code"}
	}

	var promo models.PromoCode
	if err := db.Where("code = ?", canonical).First(&promo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &Rejection{Reason: "promo code not found"}
		}
		return nil, err
	}

	usedByUser := func() (int64, error) {
		var count int64
		err := db.Model(&models.PromoUsage{}).
			Where("user_id = ? AND promo_id = ?", *userID, promo.ID).
			Count(&count).Error
		return count, err
	}

	return evaluate(&promo, subtotalCents, userID, usedByUser, time.Now())
}
