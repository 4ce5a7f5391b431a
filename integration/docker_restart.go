//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

// restartServiceContainer restarts the foodreview service defined in the
// repository's docker-compose.yml; go test runs from integration/.
func restartServiceContainer(t *testing.T, ctx context.Context) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", "-f", "../docker-compose.yml", "restart", "foodreview")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose restart foodreview failed: %v\n%s", err, string(out))
	}
}
