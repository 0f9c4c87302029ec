package models

import (
	"time"
)

type ChainBook struct {
	ID                int64
	Name              string
	ChainID           uint64
	Quoter            string
	Bridge            string
	TokenIn           string
	TokenOut          string
	ZroPaymentAddress string
	ExplorerURL       string
	DefaultGasLimit   uint64
	FeeTier           uint32
	DstChainID        uint16
	AdapterParams     string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
