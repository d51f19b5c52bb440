//go:build tools

package tools

// Tool dependencies, tracked via blank imports so go.mod pins their
// versions. mockery generates the testify mocks under pkg/transport/mocks;
// goimports keeps generated and hand-written imports consistent.
import (
	_ "github.com/vektra/mockery/v2"
	_ "golang.org/x/tools/cmd/goimports"
)
