package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/reciperank/internal/adapters/http/api"
	service "github.com/okian/reciperank/internal/app"
)

func TestRootCmd(t *testing.T) {
	convey.Convey("Given a ranking service", t, func() {
		svc := service.New()
		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		convey.Convey("When the probe runs against it", func() {
			cmd := newRootCmd()
			var out, errOut bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&errOut)
			cmd.SetArgs([]string{"--url", srv.URL, "--requests", "4", "--candidates", "10", "--workers", "2"})

			err := cmd.Execute()

			convey.Convey("Then it succeeds and prints a summary", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "sent=4 ok=4 failed=0 invalid=0 ranked=40")
			})
		})

		convey.Convey("When an unknown flag is passed", func() {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--nope"})

			convey.So(cmd.Execute(), convey.ShouldNotBeNil)
		})
	})
}
