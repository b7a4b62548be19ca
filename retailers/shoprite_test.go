package retailers

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storefrontDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestExtractStorefrontItem(t *testing.T) {
	doc := storefrontDoc(t, `<div class="item-product"
		data-product-ga='{"id":"10155584EA","name":"Full Cream Milk 2L","price":"38.99"}'>
		<a href="/p/full-cream-milk-2l/10155584EA"></a>
		<img src="/medias/10155584EA.png">
	</div>`)

	extract := extractStorefrontItem("https://www.checkers.co.za")
	sel := doc.FindMatcher(storefrontItems).First()

	p, err := extract(doc, sel, "Checkers")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "10155584EA", p.ID)
	assert.Equal(t, "Full Cream Milk 2L", p.Name)
	assert.Equal(t, 38.99, p.Price)
	assert.Equal(t, "Checkers", p.Retailer)
	assert.Equal(t, "https://www.checkers.co.za/medias/10155584EA.png", p.Image)
	assert.Equal(t, "https://www.checkers.co.za/p/full-cream-milk-2l/10155584EA", p.URL)
}

func TestExtractStorefrontItem_NumericPrice(t *testing.T) {
	doc := storefrontDoc(t, `<div class="item-product"
		data-product-ga='{"id":"1","name":"Brown Bread","price":17.49}'></div>`)

	p, err := extractStorefrontItem("https://www.shoprite.co.za")(doc, doc.FindMatcher(storefrontItems).First(), "Shoprite")
	require.NoError(t, err)
	assert.Equal(t, 17.49, p.Price)
}

func TestExtractStorefrontItem_Malformed(t *testing.T) {
	extract := extractStorefrontItem("https://www.checkers.co.za")

	cases := map[string]string{
		"missing attribute": `<div class="item-product"></div>`,
		"broken json":       `<div class="item-product" data-product-ga='{"id":'></div>`,
		"no name":           `<div class="item-product" data-product-ga='{"id":"1","price":"9.99"}'></div>`,
		"bad price":         `<div class="item-product" data-product-ga='{"id":"1","name":"X","price":"special"}'></div>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			doc := storefrontDoc(t, body)
			p, err := extract(doc, doc.FindMatcher(storefrontItems).First(), "Checkers")
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}
}
