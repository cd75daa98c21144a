// Package models defines the core data structures for users, categories,
// items, purchase intents and messages.
package models

import "time"

// Role values for User.Role.
const (
	// RoleAdmin marks an administrator account.
	RoleAdmin = "admin"
	// RoleUser marks a regular account.
	RoleUser = "user"
)

// Status values for User.Status.
const (
	// StatusPending marks a registered account awaiting admin approval.
	StatusPending = "pending"
	// StatusApproved marks an account cleared to use the marketplace.
	StatusApproved = "approved"
)

// Status values for Item.Status. A sold item is terminal: no operation
// transitions it back to active.
const (
	// ItemActive marks an item available for purchase intents.
	ItemActive = "active"
	// ItemSold marks an item whose sale has been confirmed.
	ItemSold = "sold"
)

// ContactInfo is the contact bundle attached to every user.
type ContactInfo struct {
	// Address is the user's free-text address.
	Address string `json:"address"`
	// Phone is the user's phone number.
	Phone string `json:"phone"`
	// Email is the user's email address.
	Email string `json:"email"`
}

// User represents an application user.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the unique login name chosen by the user.
	Username string `json:"username"`
	// Role is either RoleAdmin or RoleUser.
	Role string `json:"role"`
	// Status is either StatusPending or StatusApproved.
	Status string `json:"status"`
	// Contact holds the user's contact bundle.
	Contact ContactInfo `json:"contact"`
}

// Category is a named item category with an attribute template.
type Category struct {
	// ID is the unique identifier for the category.
	ID int64 `json:"id"`
	// Name is the unique category name.
	Name string `json:"name"`
	// Attributes is the ordered list of extra field names items in this
	// category carry.
	Attributes []string `json:"attributes"`
}

// Item is a marketplace listing.
type Item struct {
	// ID is the unique identifier for the item.
	ID int64 `json:"id"`
	// Name is the listing title.
	Name string `json:"name"`
	// Description is the free-text description.
	Description string `json:"description"`
	// CategoryID references the owning category.
	CategoryID int64 `json:"category_id"`
	// OwnerID references the selling user.
	OwnerID int64 `json:"owner_id"`
	// BuyerID references the buyer; set only once the item is sold.
	BuyerID *int64 `json:"buyer_id,omitempty"`
	// Status is either ItemActive or ItemSold.
	Status string `json:"status"`
	// Price is the asking price; non-negative.
	Price float64 `json:"price"`
	// CanBargain reports whether the seller accepts bargain offers.
	CanBargain bool `json:"can_bargain"`
	// Address is the free-text pickup location.
	Address string `json:"address"`
	// SpecificAttributes maps category attribute names to values. Keys are
	// drawn from the category template at creation time and are not
	// reconciled when the template later changes.
	SpecificAttributes map[string]string `json:"specific_attributes"`
	// ImagePaths holds stable references into the image store.
	ImagePaths []string `json:"image_paths"`
	// CreatedAt is the listing creation time.
	CreatedAt time.Time `json:"created_at"`

	// Fields below are joined in by the repository for display.

	// CategoryName is the resolved category name.
	CategoryName string `json:"category_name"`
	// OwnerUsername is the resolved owner login.
	OwnerUsername string `json:"owner_username"`
	// OwnerContact is the owner's contact bundle.
	OwnerContact ContactInfo `json:"owner_contact"`
	// WantCount is the number of recorded purchase intents for this item.
	WantCount int `json:"want_count"`
}

// NewItem carries the fields for creating an item. Category and owner are
// referenced by name and resolved to internal keys at insert time.
type NewItem struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Price              float64           `json:"price"`
	CanBargain         bool              `json:"can_bargain"`
	Address            string            `json:"address"`
	Category           string            `json:"category"`
	OwnerUsername      string            `json:"owner_username"`
	SpecificAttributes map[string]string `json:"specific_attributes"`
	ImagePaths         []string          `json:"image_paths"`
}

// ItemPatch carries a partial item revision. Nil fields are left unchanged.
type ItemPatch struct {
	Name               *string           `json:"name,omitempty"`
	Description        *string           `json:"description,omitempty"`
	Price              *float64          `json:"price,omitempty"`
	CanBargain         *bool             `json:"can_bargain,omitempty"`
	Address            *string           `json:"address,omitempty"`
	SpecificAttributes map[string]string `json:"specific_attributes,omitempty"`
	ImagePaths         []string          `json:"image_paths,omitempty"`
}

// Want records a user's purchase intent for an item. At most one exists
// per (user, item) pair.
type Want struct {
	// ID is the unique identifier for the intent.
	ID int64 `json:"id"`
	// UserID references the interested buyer.
	UserID int64 `json:"user_id"`
	// ItemID references the wanted item.
	ItemID int64 `json:"item_id"`
	// OfferPrice is the bargain offer; 0 means the listed price is accepted.
	OfferPrice float64 `json:"offer_price"`
	// CreatedAt is the intent creation time.
	CreatedAt time.Time `json:"created_at"`
}

// ReceivedWant is a seller-facing view of one intent on one of their items.
type ReceivedWant struct {
	// ItemName is the name of the wanted item.
	ItemName string `json:"item_name"`
	// BuyerName is the login of the interested buyer.
	BuyerName string `json:"buyer_name"`
	// Contact is the buyer's contact bundle.
	Contact ContactInfo `json:"contact"`
	// OfferPrice is the buyer's bargain offer, 0 if none.
	OfferPrice float64 `json:"offer_price"`
}

// Message is one entry on an item's message board.
type Message struct {
	// ID is the unique identifier for the message.
	ID int64 `json:"id"`
	// ItemID references the item the message is attached to.
	ItemID int64 `json:"item_id"`
	// SenderID references the authoring user.
	SenderID int64 `json:"sender_id"`
	// SenderName is the resolved author login.
	SenderName string `json:"sender_name"`
	// Content is the message text.
	Content string `json:"content"`
	// ReplyToID references the message this one replies to, if any. The
	// referenced message is always on the same item.
	ReplyToID *int64 `json:"reply_to_id,omitempty"`
	// CreatedAt is the message creation time.
	CreatedAt time.Time `json:"created_at"`
}
