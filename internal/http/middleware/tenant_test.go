package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/correlate/common/logger"
	"basegraph.app/correlate/internal/http/middleware"
)

var _ = Describe("RequireOrganization", func() {
	var (
		router *gin.Engine
		seen   int64
		fields logger.LogFields
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		seen = 0
		router = gin.New()
		router.GET("/t", middleware.RequireOrganization(), func(c *gin.Context) {
			seen, _ = middleware.OrganizationID(c.Request.Context())
			fields = logger.GetLogFields(c.Request.Context())
			c.Status(http.StatusNoContent)
		})
	})

	get := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set(middleware.OrganizationHeader, header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	It("reads the header and tags the log context", func() {
		Expect(get("/t", "12")).To(Equal(http.StatusNoContent))
		Expect(seen).To(Equal(int64(12)))
		Expect(fields.OrganizationID).NotTo(BeNil())
		Expect(*fields.OrganizationID).To(Equal(int64(12)))
	})

	It("falls back to the query parameter", func() {
		Expect(get("/t?organization_id=5", "")).To(Equal(http.StatusNoContent))
		Expect(seen).To(Equal(int64(5)))
	})

	DescribeTable("rejects missing or malformed tenants",
		func(path, header string) {
			Expect(get(path, header)).To(Equal(http.StatusBadRequest))
			Expect(seen).To(BeZero())
		},
		Entry("absent", "/t", ""),
		Entry("not a number", "/t", "acme"),
		Entry("zero", "/t", "0"),
		Entry("negative", "/t", "-3"),
	)
})

var _ = Describe("RequireAdminKey", func() {
	newRouter := func(key string) *gin.Engine {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.GET("/admin", middleware.RequireAdminKey(key), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	get := func(r *gin.Engine, key string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if key != "" {
			req.Header.Set(middleware.AdminKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	It("allows everything when no key is configured", func() {
		Expect(get(newRouter(""), "")).To(Equal(http.StatusOK))
	})

	It("checks the key when configured", func() {
		r := newRouter("s3cret")
		Expect(get(r, "")).To(Equal(http.StatusUnauthorized))
		Expect(get(r, "wrong")).To(Equal(http.StatusUnauthorized))
		Expect(get(r, "s3cret")).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Recovery", func() {
	It("turns panics into 500s", func() {
		gin.SetMode(gin.TestMode)
		r := gin.New()
		r.Use(middleware.Recovery(), middleware.Logger())
		r.GET("/boom", func(*gin.Context) { panic("boom") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})
