package messaging

import "github.com/matst80/slask-catalog/pkg/types"

type ChangeTopic string

const (
	CatalogChanged ChangeTopic = "catalog_changed"
	Tracking       ChangeTopic = "tracking"
)

// GlobalPrefix is used for topics shared by every country.
const GlobalPrefix = "global"

// CatalogChange announces that the remote catalog was updated. An empty Ids
// list means the whole catalog should be reloaded.
type CatalogChange struct {
	Reason string            `json:"reason,omitempty"`
	Ids    []types.ProductId `json:"ids,omitempty"`
}

func (c CatalogChange) IsFullReload() bool {
	return len(c.Ids) == 0
}
