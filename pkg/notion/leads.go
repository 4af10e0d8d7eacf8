package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadharvest/leadharvest-cli/internal/model"
	"github.com/leadharvest/leadharvest-cli/internal/resilience"
)

// Deliver pushes merged leads into the database as one page per lead,
// skipping leads whose email already exists there. Transient API failures
// are retried per page. Returns the number of pages created.
func Deliver(ctx context.Context, c Client, dbID string, records []model.MergedRecord) (int, error) {
	existing, err := existingEmails(ctx, c, dbID)
	if err != nil {
		return 0, err
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("notion", "create_page")

	created := 0
	for _, rec := range records {
		if rec.Email != "" && existing[strings.ToLower(rec.Email)] {
			continue
		}
		_, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*notionapi.Page, error) {
			return c.CreatePage(ctx, leadPage(dbID, rec))
		})
		if err != nil {
			return created, eris.Wrapf(err, "notion: deliver lead %s", leadTitle(rec))
		}
		created++
	}

	zap.L().Info("notion: delivered leads",
		zap.String("database", dbID),
		zap.Int("created", created),
		zap.Int("skipped", len(records)-created),
	)
	return created, nil
}

// QueryAll fetches every page of a database query, following pagination.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	for {
		resp, err := c.QueryDatabase(ctx, dbID, req)
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}
		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func existingEmails(ctx context.Context, c Client, dbID string) (map[string]bool, error) {
	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, err
	}

	emails := make(map[string]bool, len(pages))
	for _, page := range pages {
		prop, ok := page.Properties["Email"]
		if !ok {
			continue
		}
		if ep, ok := prop.(*notionapi.EmailProperty); ok && ep.Email != "" {
			emails[strings.ToLower(ep.Email)] = true
		}
	}
	return emails, nil
}

// leadTitle picks the page title for a lead: business name, then person
// name, then whichever contact field exists.
func leadTitle(rec model.MergedRecord) string {
	for _, candidate := range []string{rec.BusinessName, rec.Name, rec.Email, rec.Phone, rec.ProfileURL} {
		if candidate != "" {
			return candidate
		}
	}
	return "Unnamed lead"
}

func leadPage(dbID string, rec model.MergedRecord) *notionapi.PageCreateRequest {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: leadTitle(rec)}}},
		},
		"Source": notionapi.SelectProperty{
			Select: notionapi.Option{Name: rec.Source},
		},
	}
	if rec.Email != "" {
		props["Email"] = notionapi.EmailProperty{Email: rec.Email}
	}
	if rec.Phone != "" {
		props["Phone"] = notionapi.PhoneNumberProperty{PhoneNumber: rec.Phone}
	}
	if rec.Website != "" {
		props["Website"] = notionapi.URLProperty{URL: rec.Website}
	}
	if rec.ProfileURL != "" {
		props["Profile"] = notionapi.URLProperty{URL: rec.ProfileURL}
	}
	if rec.Address != "" {
		props["Address"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: rec.Address}}},
		}
	}

	return &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{DatabaseID: notionapi.DatabaseID(dbID)},
		Properties: props,
	}
}
