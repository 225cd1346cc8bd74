package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"
)

var catalogTables = []string{"category", "products", "offer", "order_product", "consent", "users"}

// TestFeatures runs the catalog features against a throwaway postgres.
// MIBAUU_FEATURES narrows the run to a comma separated list of feature
// names (e.g. "products,login") and MIBAUU_FEATURE_TAGS filters by tag.
func TestFeatures(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err, "start postgres")
	defer tc.Close(ctx)

	for _, table := range catalogTables {
		var found bool
		err := tc.RawDB.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&found)
		require.NoError(t, err)
		require.True(t, found, "schema is missing table %s", table)
	}

	suite := godog.TestSuite{
		Name: "mibauu",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			NewStepsContext(tc).RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    featurePaths(os.Getenv("MIBAUU_FEATURES")),
			Tags:     os.Getenv("MIBAUU_FEATURE_TAGS"),
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("catalog features failed")
	}
}

func featurePaths(names string) []string {
	if strings.TrimSpace(names) == "" {
		return []string{"features"}
	}
	var paths []string
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSuffix(strings.TrimSpace(name), ".feature")
		if name != "" {
			paths = append(paths, filepath.Join("features", name+".feature"))
		}
	}
	return paths
}

func TestFeaturePaths(t *testing.T) {
	require.Equal(t, []string{"features"}, featurePaths(" "))
	require.Equal(t,
		[]string{filepath.Join("features", "products.feature"), filepath.Join("features", "login.feature")},
		featurePaths("products, login.feature,"))
}
