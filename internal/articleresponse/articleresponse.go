package articleresponse

import (
	"net/http"

	"github.com/SergeyParamoshkin/realworld/internal/model"
	"github.com/SergeyParamoshkin/realworld/internal/projection"
)

// ArticleListResponse is one page of articles as seen by a viewer, with the
// total number of articles matching the listing.
type ArticleListResponse struct {
	Articles      []projection.Article `json:"articles"`
	ArticlesCount int64                `json:"articlesCount"`
}

func NewArticleListResponse(articles []*model.Article, count int64, viewerID string) *ArticleListResponse {
	return &ArticleListResponse{
		Articles:      projection.ProjectArticles(articles, viewerID),
		ArticlesCount: count,
	}
}

// Empty is the listing with no articles.
func Empty() *ArticleListResponse {
	return &ArticleListResponse{Articles: []projection.Article{}}
}

func (rd *ArticleListResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if rd.Articles == nil {
		rd.Articles = []projection.Article{}
	}

	return nil
}
