package instagram

import (
	"github.com/linkgrab/linkgrab/internal/domain"
)

// maxCarouselItems caps how many items of a carousel are processed.
const maxCarouselItems = 10

// The post endpoint answers with one of two incompatible schema shapes for
// the same logical data: the mobile/app shape ("items") and the public
// GraphQL shape ("graphql.shortcode_media"). Which one appears depends on
// server-side routing, so every field is extracted by trying the app shape
// first and falling back to the GraphQL shape.

type postPayload struct {
	Items   []postItem      `json:"items"`
	GraphQL *graphQLPayload `json:"graphql"`
}

type postItem struct {
	CarouselMedia []carouselEntry `json:"carousel_media"`
	ImageVersions *imageVersions  `json:"image_versions2"`
	VideoVersions []videoVersion  `json:"video_versions"`
}

type carouselEntry struct {
	ImageVersions *imageVersions `json:"image_versions2"`
	VideoVersions []videoVersion `json:"video_versions"`
}

type imageVersions struct {
	Candidates []struct {
		URL string `json:"url"`
	} `json:"candidates"`
}

type videoVersion struct {
	URL string `json:"url"`
}

type graphQLPayload struct {
	ShortcodeMedia *shortcodeMedia `json:"shortcode_media"`
}

type shortcodeMedia struct {
	DisplayURL            string   `json:"display_url"`
	VideoURL              string   `json:"video_url"`
	EdgeSidecarToChildren *sidecar `json:"edge_sidecar_to_children"`
}

type sidecar struct {
	Edges []struct {
		Node sidecarNode `json:"node"`
	} `json:"edges"`
}

type sidecarNode struct {
	DisplayURL string `json:"display_url"`
	VideoURL   string `json:"video_url"`
}

// Extraction is the media resolved from a post payload: either a carousel
// item list, or single-asset image/video URLs.
type Extraction struct {
	Carousel []domain.CarouselItem
	ImageURL string
	VideoURL string
}

// IsEmpty reports whether nothing could be extracted.
func (e Extraction) IsEmpty() bool {
	return len(e.Carousel) == 0 && e.ImageURL == "" && e.VideoURL == ""
}

// ExtractMedia resolves the media of a post from either schema shape,
// field by field: carousel list, image URL and video URL each fall back
// from the app shape to the GraphQL shape independently.
func ExtractMedia(p *postPayload) Extraction {
	return Extraction{
		Carousel: extractCarousel(p),
		ImageURL: extractImageURL(p),
		VideoURL: extractVideoURL(p),
	}
}

func extractCarousel(p *postPayload) []domain.CarouselItem {
	// App shape: items[0].carousel_media[0:10]
	if len(p.Items) > 0 && len(p.Items[0].CarouselMedia) > 0 {
		entries := p.Items[0].CarouselMedia
		if len(entries) > maxCarouselItems {
			entries = entries[:maxCarouselItems]
		}
		items := make([]domain.CarouselItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, domain.CarouselItem{
				ImageURL: firstCandidateURL(e.ImageVersions),
				VideoURL: firstVideoURL(e.VideoVersions),
			})
		}
		return items
	}

	// GraphQL shape: graphql.shortcode_media.edge_sidecar_to_children.edges[0:10]
	if p.GraphQL != nil && p.GraphQL.ShortcodeMedia != nil && p.GraphQL.ShortcodeMedia.EdgeSidecarToChildren != nil {
		edges := p.GraphQL.ShortcodeMedia.EdgeSidecarToChildren.Edges
		if len(edges) > maxCarouselItems {
			edges = edges[:maxCarouselItems]
		}
		items := make([]domain.CarouselItem, 0, len(edges))
		for _, e := range edges {
			items = append(items, domain.CarouselItem{
				ImageURL: e.Node.DisplayURL,
				VideoURL: e.Node.VideoURL,
			})
		}
		return items
	}

	return nil
}

func extractImageURL(p *postPayload) string {
	if len(p.Items) > 0 {
		if url := firstCandidateURL(p.Items[0].ImageVersions); url != "" {
			return url
		}
	}
	if p.GraphQL != nil && p.GraphQL.ShortcodeMedia != nil {
		return p.GraphQL.ShortcodeMedia.DisplayURL
	}
	return ""
}

func extractVideoURL(p *postPayload) string {
	if len(p.Items) > 0 {
		if url := firstVideoURL(p.Items[0].VideoVersions); url != "" {
			return url
		}
	}
	if p.GraphQL != nil && p.GraphQL.ShortcodeMedia != nil {
		return p.GraphQL.ShortcodeMedia.VideoURL
	}
	return ""
}

func firstCandidateURL(iv *imageVersions) string {
	if iv == nil || len(iv.Candidates) == 0 {
		return ""
	}
	return iv.Candidates[0].URL
}

func firstVideoURL(vv []videoVersion) string {
	if len(vv) == 0 {
		return ""
	}
	return vv[0].URL
}
