// Package storage defines the persistence contract shared by the web
// handlers and the import/sync commands.
package storage

import (
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// Entity names accepted by translation upserts.
const (
	EntitySet  = "set"
	EntityPack = "pack"
	EntityCard = "card"
)

// RarityCount is a per-set card count for one rarity.
type RarityCount struct {
	SetID  int64
	Rarity string
	Count  int
}

// SetCount is a per-set card or collection count.
type SetCount struct {
	SetID int64
	Count int
}

// RarityPoolRow summarises one rarity inside a pack: how many cards exist
// and how many of them a user owns.
type RarityPoolRow struct {
	Rarity string
	Total  int
	Owned  int
}

// CardSearchResult is a card joined with its set for search listings.
type CardSearchResult struct {
	Card          domain.Card
	LocalizedName string
	SetID         int64
	SetCode       string
	SetName       string
}

// PackWithSet is a pack joined with its owning set.
type PackWithSet struct {
	Pack          domain.Pack
	SetID         int64
	SetCode       string
	SetName       string
	SetGeneration string
}

// PublicProfile is a profile joined with its username for friend search.
type PublicProfile struct {
	UserID     int64
	Username   string
	FriendCode string
	Public     bool
}

// PendingRequest is an open friend request joined with the sender's name.
type PendingRequest struct {
	RequestID    int64
	FromUserID   int64
	FromUsername string
}
