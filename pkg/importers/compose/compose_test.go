package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/infragraph/pkg/errors"
	"github.com/matzehuels/infragraph/pkg/graph"
	"github.com/matzehuels/infragraph/pkg/importers"
)

func parse(t *testing.T, doc string) *importers.Result {
	t.Helper()
	res, err := New().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return res
}

func edgeKeys(g *graph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.Key().String())
	}
	return out
}

func TestParse(t *testing.T) {
	t.Run("services volumes and dependencies", func(t *testing.T) {
		res := parse(t, `
services:
  web:
    image: nginx:1.25
    ports: ["8080:80"]
    depends_on: [api]
  api:
    image: example/api
    depends_on:
      db:
        condition: service_healthy
    volumes:
      - uploads:/srv/uploads
  db:
    image: postgres:16
    volumes:
      - type: volume
        source: pgdata
        target: /var/lib/postgresql/data
volumes:
  pgdata:
  uploads:
    driver: local
`)
		g := res.Graph
		assert.Empty(t, res.Warnings)
		assert.Equal(t, []string{"web", "api", "db", "pgdata", "uploads"}, g.NodeIDs())

		web, _ := g.Node("web")
		assert.Equal(t, graph.NodeDockerContainer, web.Type)
		assert.Equal(t, "web", web.Name)
		assert.Equal(t, "nginx:1.25", web.Description)
		assert.Equal(t, "8080:80", web.Properties["ports"])

		pg, _ := g.Node("pgdata")
		assert.Equal(t, graph.NodeDatabase, pg.Type)
		up, _ := g.Node("uploads")
		assert.Equal(t, "local", up.Properties["driver"])

		assert.Equal(t, []string{
			"web -[depends_on]-> api",
			"api -[depends_on]-> db",
			"api -[depends_on]-> uploads",
			"db -[depends_on]-> pgdata",
		}, edgeKeys(g))
	})

	t.Run("missing dependency target is a warning", func(t *testing.T) {
		res := parse(t, `
services:
  web:
    image: nginx
    depends_on: [ghost]
`)
		assert.Equal(t, 1, res.Graph.NodeCount())
		assert.Equal(t, 0, res.Graph.EdgeCount())
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, "services.web", res.Warnings[0].Entry)
		assert.Contains(t, res.Warnings[0].Message, "ghost")
		assert.False(t, res.Graph.HasNode("ghost"))
	})

	t.Run("bind mounts ignored and undeclared volume warned", func(t *testing.T) {
		res := parse(t, `
services:
  app:
    image: app
    volumes:
      - ./config:/etc/app
      - /var/run/docker.sock:/var/run/docker.sock
      - /tmp/cache
      - logs:/var/log/app
      - type: bind
        source: ./data
        target: /data
`)
		assert.Equal(t, 0, res.Graph.EdgeCount())
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0].Message, `"logs"`)
	})

	t.Run("volumes only", func(t *testing.T) {
		res := parse(t, "volumes:\n  data: {}\n")
		assert.Equal(t, []string{"data"}, res.Graph.NodeIDs())
	})

	t.Run("service and volume id collision", func(t *testing.T) {
		res := parse(t, `
services:
  cache:
    image: redis
    volumes: ["cache:/data"]
volumes:
  cache:
`)
		assert.Equal(t, []string{"cache"}, res.Graph.NodeIDs())
		assert.Equal(t, 0, res.Graph.EdgeCount())
		assert.Len(t, res.Warnings, 2)
	})

	t.Run("malformed service is a warning", func(t *testing.T) {
		res := parse(t, `
services:
  good:
    image: busybox
  bad:
    depends_on: 42
`)
		assert.Equal(t, []string{"good", "bad"}, res.Graph.NodeIDs())
		require.NotEmpty(t, res.Warnings)
		assert.Equal(t, "services.bad", res.Warnings[0].Entry)
	})

	t.Run("non-mapping entries are skipped", func(t *testing.T) {
		res := parse(t, `
services:
  web: nginx
  api: [1, 2]
  db:
    image: postgres
    volumes: ["cache:/data"]
volumes:
  cache: local
  data:
`)
		assert.Equal(t, []string{"db", "data"}, res.Graph.NodeIDs())
		assert.Equal(t, 0, res.Graph.EdgeCount())
		var entries []string
		for _, w := range res.Warnings {
			entries = append(entries, w.Entry)
		}
		assert.Equal(t, []string{"services.web", "services.api", "volumes.cache", "services.db"}, entries)
		assert.Contains(t, res.Warnings[3].Message, "skipped volume")
	})

	t.Run("dependency on undefined service keeps declared volume", func(t *testing.T) {
		res := parse(t, `
services:
  web:
    depends_on: [db]
volumes:
  dbdata: {}
`)
		assert.Equal(t, []string{"web", "dbdata"}, res.Graph.NodeIDs())
		assert.Equal(t, 0, res.Graph.EdgeCount())
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, "services.web", res.Warnings[0].Entry)
		assert.Contains(t, res.Warnings[0].Message, `undefined service "db"`)
	})

	t.Run("merge keys", func(t *testing.T) {
		res := parse(t, `
x-common: &common
  image: shared/base
  depends_on: [db]
services:
  db:
    image: postgres
  worker:
    <<: *common
`)
		worker, ok := res.Graph.Node("worker")
		require.True(t, ok)
		assert.Equal(t, "shared/base", worker.Description)
		assert.Equal(t, []string{"worker -[depends_on]-> db"}, edgeKeys(res.Graph))
	})

	t.Run("long port syntax and build", func(t *testing.T) {
		res := parse(t, `
services:
  api:
    build: ./api
    ports:
      - target: 80
        published: 8080
        protocol: tcp
`)
		api, _ := res.Graph.Node("api")
		assert.Equal(t, "built from ./api", api.Description)
		assert.Equal(t, "8080:80/tcp", api.Properties["ports"])
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "services: [unclosed"},
		{"empty", ""},
		{"scalar document", "just a string"},
		{"list document", "- a\n- b\n"},
		{"no services or volumes", "version: '3.8'\nnetworks: {}\n"},
		{"services not mapping", "services: [web, db]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New().Parse(strings.NewReader(tt.doc))
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.ErrCodeParse), "code = %s", errs.GetCode(err))
		})
	}
}

func TestSupports(t *testing.T) {
	imp := New()
	for name, want := range map[string]bool{
		"docker-compose.yml":      true,
		"compose.yaml":            true,
		"docker-compose.prod.yml": true,
		"Compose.YML":             true,
		"deployment.yaml":         false,
		"docker-compose.json":     false,
	} {
		assert.Equal(t, want, imp.Supports(name), name)
	}
}
