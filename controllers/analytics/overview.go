// Package analytics builds the admin dashboard figures for a date range.
package analytics

import (
	"context"
	"sort"
	"time"

	"storefront-api/apperr"
	"storefront-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	topProducts   = 10
	topUsers      = 10
	topCategories = 5
	recentOrders  = 10

	dayLayout = "2006-01-02"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Totals struct {
	Orders            int             `json:"orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	UnitsSold         int             `json:"unitsSold"`
	PaidOrders        int             `json:"paidOrders"`
	DeliveredOrders   int             `json:"deliveredOrders"`
	NewUsers          int64           `json:"newUsers"`
}

type DayPoint struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Ranked struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Detail   string          `json:"detail,omitempty"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type Overview struct {
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	Totals        Totals         `json:"totals"`
	Daily         []DayPoint     `json:"daily"`
	TopProducts   []Ranked       `json:"topProducts"`
	TopUsers      []Ranked       `json:"topUsers"`
	TopCategories []Ranked       `json:"topCategories"`
	RecentOrders  []models.Order `json:"recentOrders"`
}

// Overview loads every order created in [from, to] and aggregates it in memory.
func (s *Service) Overview(ctx context.Context, from, to time.Time) (*Overview, error) {
	if to.Before(from) {
		return nil, apperr.Validation("The end date must not be before the start date")
	}

	db := s.db.WithContext(ctx)
	var orders []models.Order
	err := db.Preload("Items.Product.Category").Preload("User").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	var newUsers int64
	if err := db.Model(&models.User{}).Where("created_at >= ? AND created_at <= ?", from, to).Count(&newUsers).Error; err != nil {
		return nil, err
	}

	ov := Aggregate(orders, from, to)
	ov.Totals.NewUsers = newUsers
	return &ov, nil
}

func (r *Ranked) add(qty int, amount decimal.Decimal) {
	r.Quantity += qty
	r.Revenue = r.Revenue.Add(amount)
}

// Aggregate computes the dashboard from already loaded orders. Every calendar day
// between from and to appears in Daily, in from's location, even without orders.
func Aggregate(orders []models.Order, from, to time.Time) Overview {
	loc := from.Location()
	ov := Overview{From: from, To: to}

	daily := map[string]*DayPoint{}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day := start; !day.After(to); day = day.AddDate(0, 0, 1) {
		p := &DayPoint{Date: day.Format(dayLayout), Revenue: decimal.Zero}
		daily[p.Date] = p
		ov.Daily = append(ov.Daily, *p)
	}

	products := map[uint]*Ranked{}
	users := map[uint]*Ranked{}
	categories := map[string]*Ranked{}

	for _, o := range orders {
		ov.Totals.Orders++
		ov.Totals.Revenue = ov.Totals.Revenue.Add(o.TotalPrice)
		if o.IsPaid {
			ov.Totals.PaidOrders++
		}
		if o.IsDelivered {
			ov.Totals.DeliveredOrders++
		}
		if p, ok := daily[o.CreatedAt.In(loc).Format(dayLayout)]; ok {
			p.Orders++
			p.Revenue = p.Revenue.Add(o.TotalPrice)
		}

		u := users[o.UserID]
		if u == nil {
			u = &Ranked{ID: o.UserID}
			if o.User != nil {
				u.Name, u.Detail = o.User.Name, o.User.Email
			}
			users[o.UserID] = u
		}

		for _, it := range o.Items {
			amount := it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
			ov.Totals.UnitsSold += it.Quantity
			u.add(it.Quantity, amount)

			p := products[it.ProductID]
			if p == nil {
				p = &Ranked{ID: it.ProductID, Name: it.Name}
				products[it.ProductID] = p
			}
			p.add(it.Quantity, amount)

			category := it.Category
			if it.Product != nil && it.Product.Category != nil {
				category = it.Product.Category.Name
			}
			c := categories[category]
			if c == nil {
				c = &Ranked{Name: category}
				if it.Product != nil {
					c.ID = it.Product.CategoryID
				}
				categories[category] = c
			}
			c.add(it.Quantity, amount)
		}
	}

	for i := range ov.Daily {
		ov.Daily[i] = *daily[ov.Daily[i].Date]
	}
	if ov.Totals.Orders > 0 {
		ov.Totals.AverageOrderValue = ov.Totals.Revenue.Div(decimal.NewFromInt(int64(ov.Totals.Orders))).Round(2)
	}

	ov.TopProducts = top(products, topProducts)
	ov.TopUsers = top(users, topUsers)
	ov.TopCategories = top(categories, topCategories)

	recent := append([]models.Order(nil), orders...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentOrders {
		recent = recent[:recentOrders]
	}
	ov.RecentOrders = recent
	return ov
}

// top ranks by revenue, then name, and keeps the first n.
func top[K comparable](m map[K]*Ranked, n int) []Ranked {
	out := make([]Ranked, 0, len(m))
	for _, t := range m {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
