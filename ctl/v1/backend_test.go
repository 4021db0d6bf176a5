/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"testing"

	"github.com/radondb/shardkit/proxy"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/ant0ine/go-json-rest/rest/test"
	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func TestCtlV1BackendAdd(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Post("/v1/radon/backend", AddBackendHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	{
		p := &backendParams{
			Name:           "backend6",
			Address:        "192.168.0.1:3306",
			User:           "mock",
			Password:       "pwd",
			MaxConnections: 1024,
		}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/radon/backend", p))
		recorded.CodeIs(200)
		assert.Equal(t, 4, len(proxy.Scatter().Backends()))
	}

	// Flushed to backend.json.
	{
		assert.Nil(t, proxy.Scatter().LoadConfig())
		_, ok := proxy.Scatter().Source("backend6")
		assert.True(t, ok)
	}
}

func TestCtlV1BackendAddError(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Post("/v1/radon/backend", AddBackendHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// 500.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/radon/backend", nil))
		recorded.CodeIs(500)
	}

	// Duplicate.
	{
		p := &backendParams{
			Name:           "backend1",
			Address:        "192.168.0.1:3306",
			User:           "mock",
			Password:       "pwd",
			MaxConnections: 1024,
		}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/radon/backend", p))
		recorded.CodeIs(500)
	}

	// Missing address.
	{
		p := &backendParams{
			Name: "backend9",
		}
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("POST", "http://localhost/v1/radon/backend", p))
		recorded.CodeIs(500)
	}
	assert.Equal(t, 3, len(proxy.Scatter().Backends()))
}

func TestCtlV1BackendRemove(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	fdb, proxy, cleanup := proxy.MockProxy(log)
	defer cleanup()

	// server
	api := rest.NewApi()
	router, _ := rest.MakeRouter(
		rest.Delete("/v1/radon/backend/:name", RemoveBackendHandler(log, proxy)),
	)
	api.SetApp(router)
	handler := api.MakeHandler()

	// An idle backend without partitions.
	{
		conf := fdb.BackendConfs()[0]
		spare := *conf
		spare.Name = "spare"
		assert.Nil(t, proxy.Scatter().Add(&spare))

		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("DELETE", "http://localhost/v1/radon/backend/spare", nil))
		recorded.CodeIs(200)
		assert.Equal(t, []string{"backend0", "backend1", "backend2"}, proxy.Scatter().Backends())
	}

	// Partitions of R, L and G live on backend2.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("DELETE", "http://localhost/v1/radon/backend/backend2", nil))
		recorded.CodeIs(409)
		assert.Contains(t, recorded.Recorder.Body.String(), "used.by.tables[sbtest.G sbtest.L sbtest.R]")
		assert.Equal(t, 3, len(proxy.Scatter().Backends()))
	}

	// Unknown backend.
	{
		recorded := test.RunRequest(t, handler, test.MakeSimpleRequest("DELETE", "http://localhost/v1/radon/backend/xx", nil))
		recorded.CodeIs(500)
	}
}
