package tool

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var orderNode = func() *snowflake.Node {
	n, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return n
}()

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateOrderID returns a snowflake id for order rows. Orders use numeric
// ids because they are user-facing (shown on receipts and admin pages).
func GenerateOrderID() string {
	return orderNode.Generate().String()
}
