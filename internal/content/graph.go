package content

import (
	"sort"
	"strings"

	"github.com/starford/inkpress/internal/models"
)

// MaxRelated caps the number of related posts per post.
const MaxRelated = 3

// SortPosts orders posts newest first. Posts with equal dates keep their
// relative order.
func SortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
}

// Link fills the navigation and related fields of posts sorted newest first.
// NextPost points at the newer neighbour, PreviousPost at the older one.
func Link(posts []models.Post) {
	for i := range posts {
		posts[i].NextPost = nil
		posts[i].PreviousPost = nil
		if i > 0 {
			posts[i].NextPost = &models.PostRef{Slug: posts[i-1].Slug, Title: posts[i-1].Title}
		}
		if i < len(posts)-1 {
			posts[i].PreviousPost = &models.PostRef{Slug: posts[i+1].Slug, Title: posts[i+1].Title}
		}
		posts[i].RelatedPosts = related(posts, i)
	}
}

func related(posts []models.Post, i int) []models.RelatedPost {
	var out []models.RelatedPost
	for j := range posts {
		if j == i || posts[j].Category != posts[i].Category {
			continue
		}
		out = append(out, models.RelatedPost{
			Slug:  posts[j].Slug,
			Title: posts[j].Title,
			Date:  posts[j].Date,
		})
		if len(out) == MaxRelated {
			break
		}
	}
	return out
}

// Categories aggregates posts sorted newest first into categories ordered
// by post count descending, then name ascending.
func Categories(posts []models.Post) []models.Category {
	bySlug := make(map[string]*models.Category)
	var order []string
	for _, p := range posts {
		c, ok := bySlug[p.Category]
		if !ok {
			name := p.CategoryName
			if name == "" {
				name = CategoryName(p.Category)
			}
			c = &models.Category{
				Slug:        p.Category,
				Name:        name,
				Description: "Explore " + strings.ToLower(name) + " articles and insights",
				LatestPost:  &models.LatestPost{Title: p.Title, Date: p.Date},
			}
			bySlug[p.Category] = c
			order = append(order, p.Category)
		}
		c.Count++
	}

	out := make([]models.Category, 0, len(order))
	for _, slug := range order {
		out = append(out, *bySlug[slug])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
