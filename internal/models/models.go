package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date (no time component) serialized as "2006-01-02".
// Parsing rejects dates that do not round-trip exactly, so "2024-02-31"
// is an error rather than a silent normalization to March 2nd.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.Date()
	if t.Format(dateLayout) != s {
		return Date{}, fmt.Errorf("invalid calendar date %q", s)
	}
	return Date{Year: y, Month: m, Day: d}, nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time().Format(dateLayout) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) After(t time.Time) bool { return d.Time().After(t) }

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	AuthorID      int64     `json:"authorId"`
	PublisherID   int64     `json:"publisherId"`
	CategoryID    int64     `json:"categoryId"`
	StockQuantity int       `json:"stockQuantity"`
	PublishedDate Date      `json:"publishedDate"`
	Image         string    `json:"image,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Author struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	Image     string    `json:"image,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Publisher struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubCategory is a leaf category; every book belongs to exactly one.
type SubCategory struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SupCategoryID int64     `json:"supCategoryId"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SupCategory groups subcategories (e.g. "Fiction" → "Fantasy", "Mystery").
type SupCategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
	RoleAdmin    = "ADMIN"
)

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Image     string    `json:"image,omitempty"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"modifiedDate"`
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CartLine is a cart row joined with its book. Subtotal is always
// price × quantity computed server-side, never trusted from the client.
type CartLine struct {
	ID       int64   `json:"id"`
	BookID   int64   `json:"bookId"`
	Title    string  `json:"title"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"items"`
	Total  float64    `json:"total"`
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderReturned   OrderStatus = "RETURNED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderDelivered, OrderCancelled},
	OrderDelivered:  {OrderReturned},
}

// CanTransition reports whether an order may move from one status to another.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderDelivered, OrderCancelled, OrderReturned:
		return true
	}
	return false
}

type OrderItem struct {
	ID        int64   `json:"id"`
	BookID    int64   `json:"bookId"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	UserID      string      `json:"userId"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	Address     string      `json:"address"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"createdAt"`
	Items       []OrderItem `json:"items,omitempty"`
}

type Review struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	BookID    int64     `json:"bookId"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
