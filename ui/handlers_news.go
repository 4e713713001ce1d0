package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"impactdash/domain/news"
)

// handleNews serves the feed newest first. A broken file yields 500 with an
// empty feed and the error text.
func (s *Server) handleNews(c *gin.Context) {
	feed, err := s.deps.News.Feed(c.Request.Context(), newsFilter(c))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, feed)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (s *Server) handleNewsStats(c *gin.Context) {
	stats, err := s.deps.News.Stats(c.Request.Context())
	if err != nil {
		s.respondError(c, err, "News konnten nicht geladen werden")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func newsFilter(c *gin.Context) news.Filter {
	var f news.Filter
	for _, v := range listParam(c, "category") {
		f.Categories = append(f.Categories, news.Category(v))
	}
	f.HighImpactOnly, _ = strconv.ParseBool(c.Query("highImpact"))
	f.VerifiedOnly, _ = strconv.ParseBool(c.Query("verified"))
	return f
}

// listParam accepts repeated and comma separated values
func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
