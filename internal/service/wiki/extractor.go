package wiki

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/domain"
	"github.com/kapu/wiki-tweets-go/internal/util"
	"github.com/kapu/wiki-tweets-go/pkg/errors"
)

const (
	selectorTitle     = "h1.page-header__title"
	selectorTitleMain = "span.mw-page-title-main"
	selectorInfobox   = "aside.portable-infobox"
	selectorInfoTitle = "h2.pi-title"
	selectorDataItem  = "div.pi-data"
	selectorDataLabel = "h3.pi-data-label"
	selectorDataValue = "div.pi-data-value"
	selectorMetaDesc  = `meta[name="description"]`
)

type labelRule struct {
	keys []string
	set  func(p *domain.MemberProfile, v string)
}

// labelRules is ordered; the first rule with a key contained in the label wins.
var labelRules = []labelRule{
	{[]string{"nickname"}, func(p *domain.MemberProfile, v string) { p.Nickname = v }},
	{[]string{"born", "birthday"}, func(p *domain.MemberProfile, v string) { p.Birthday = v }},
	{[]string{"birthplace"}, func(p *domain.MemberProfile, v string) { p.Birthplace = v }},
	{[]string{"blood"}, func(p *domain.MemberProfile, v string) { p.BloodType = v }},
	{[]string{"zodiac"}, func(p *domain.MemberProfile, v string) { p.Zodiac = v }},
	{[]string{"height"}, func(p *domain.MemberProfile, v string) { p.Height = v }},
	{[]string{"occupation"}, func(p *domain.MemberProfile, v string) { p.Occupation = v }},
	{[]string{"years active", "active"}, func(p *domain.MemberProfile, v string) { p.YearsActive = v }},
	{[]string{"agency"}, func(p *domain.MemberProfile, v string) { p.Agency = v }},
	{[]string{"generation"}, func(p *domain.MemberProfile, v string) { p.Generation = v }},
}

// Extractor turns fan-wiki member pages into profiles.
type Extractor struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewExtractor(maxBytes int64, logger *zap.Logger) *Extractor {
	if maxBytes <= 0 {
		maxBytes = constants.BatchConfig.MaxDocumentBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{maxBytes: maxBytes, logger: logger}
}

// Extract reads and parses the document at path. Only I/O failures and
// oversized documents are reported as errors.
func (e *Extractor) Extract(path string) (*domain.MemberProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError("open document", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, e.maxBytes+1))
	if err != nil {
		return nil, errors.NewParseError("read document", path, err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, errors.NewParseError(
			fmt.Sprintf("document exceeds %d bytes", e.maxBytes), path, nil)
	}

	return e.Parse(bytes.NewReader(data), path), nil
}

// Parse never fails: missing elements leave their fields empty.
func (e *Extractor) Parse(r io.Reader, path string) *domain.MemberProfile {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		e.logger.Debug("HTML parse failed", zap.String("path", path), zap.Error(err))
		return &domain.MemberProfile{}
	}
	return ParseDocument(doc, path)
}

// ParseDocument extracts a profile from an already parsed page. path is only
// used for group inference.
func ParseDocument(doc *goquery.Document, path string) *domain.MemberProfile {
	profile := &domain.MemberProfile{Name: extractName(doc)}

	infobox := doc.Find(selectorInfobox).First()
	if infobox.Length() == 0 {
		if bio, ok := metaDescription(doc); ok {
			profile.Bio = bio
		}
		return profile
	}

	profile.NameJP = extractLocalizedName(infobox)

	infobox.Find(selectorDataItem).Each(func(_ int, item *goquery.Selection) {
		label := item.Find(selectorDataLabel).First()
		value := item.Find(selectorDataValue).First()
		if label.Length() == 0 || value.Length() == 0 {
			return
		}
		applyLabel(profile, label.Text(), value.Text())
	})

	if bio, ok := metaDescription(doc); ok {
		profile.Bio = bio
	}

	infoboxHTML, err := goquery.OuterHtml(infobox)
	if err != nil {
		infoboxHTML = infobox.Text()
	}
	profile.Group = domain.InferGroup(path, infoboxHTML)

	return profile
}

func extractName(doc *goquery.Document) string {
	title := doc.Find(selectorTitle).First()
	if title.Length() == 0 {
		return ""
	}
	if main := title.Find(selectorTitleMain).First(); main.Length() > 0 {
		return util.CollapseWhitespace(main.Text())
	}
	return util.CollapseWhitespace(title.Text())
}

func extractLocalizedName(infobox *goquery.Selection) string {
	var parts []string
	infobox.Find(selectorInfoTitle).First().Find("ruby").Each(func(_ int, ruby *goquery.Selection) {
		if rb := ruby.Find("rb").First(); rb.Length() > 0 {
			parts = append(parts, strings.TrimSpace(rb.Text()))
		}
	})
	return strings.Join(parts, "")
}

func applyLabel(profile *domain.MemberProfile, rawLabel, rawValue string) {
	label := strings.ToLower(strings.TrimSpace(rawLabel))
	value := util.CollapseWhitespace(rawValue)

	for _, rule := range labelRules {
		for _, key := range rule.keys {
			if strings.Contains(label, key) {
				rule.set(profile, value)
				return
			}
		}
	}
}

func metaDescription(doc *goquery.Document) (string, bool) {
	meta := doc.Find(selectorMetaDesc).First()
	if meta.Length() == 0 {
		return "", false
	}
	content, _ := meta.Attr("content")
	return content, true
}
