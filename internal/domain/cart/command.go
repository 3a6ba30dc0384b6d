package cart

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Command is a cart mutation. The set of implementations is closed.
type Command interface {
	cartCommand()
	Name() string
}

// AddItemCommand adds one unit of a product
type AddItemCommand struct {
	Item Item
}

// RemoveItemCommand drops a product's line
type RemoveItemCommand struct {
	ProductID uuid.UUID
}

// SetQuantityCommand replaces a line's quantity
type SetQuantityCommand struct {
	ProductID uuid.UUID
	Quantity  int
}

// ClearCommand empties the cart
type ClearCommand struct{}

func (AddItemCommand) cartCommand()     {}
func (RemoveItemCommand) cartCommand()  {}
func (SetQuantityCommand) cartCommand() {}
func (ClearCommand) cartCommand()       {}

func (AddItemCommand) Name() string     { return "add_item" }
func (RemoveItemCommand) Name() string  { return "remove_item" }
func (SetQuantityCommand) Name() string { return "set_quantity" }
func (ClearCommand) Name() string       { return "clear" }

// ErrUnknownCommand is returned by Apply for a nil or unrecognized command
var ErrUnknownCommand = shared.NewDomainError("UNKNOWN_CART_COMMAND", "Unknown cart command")

// Apply dispatches cmd to the matching ledger operation
func (c *Cart) Apply(cmd Command) error {
	switch cmd := cmd.(type) {
	case AddItemCommand:
		c.AddItem(cmd.Item)
	case RemoveItemCommand:
		c.RemoveItem(cmd.ProductID)
	case SetQuantityCommand:
		c.SetQuantity(cmd.ProductID, cmd.Quantity)
	case ClearCommand:
		c.Clear()
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return nil
}
