package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>BESalary</title>
  <item>
    <title>  Salary post  </title>
    <link>https://example.com/p/1</link>
    <guid>t3_abc</guid>
    <pubDate>Mon, 02 Jan 2023 15:04:05 GMT</pubDate>
    <description>short</description>
    <content:encoded><![CDATA[<p><strong>PERSONALIA</strong></p><p>Age: 29</p>]]></content:encoded>
  </item>
  <item>
    <title>No guid</title>
    <link>https://example.com/p/2</link>
    <description>plain body</description>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>BESalary</title>
  <entry>
    <id>tag:example.com,2023:1</id>
    <title>Atom post</title>
    <link href="https://example.com/a"/>
    <updated>2023-01-02T15:04:05Z</updated>
    <content type="html">&lt;p&gt;Age: 30&lt;/p&gt;</content>
  </entry>
</feed>`

func TestParse_RSS(t *testing.T) {
	f := NewFetcher("test-agent", time.Second, nil)

	items, err := f.Parse(rssFeed)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "t3_abc", first.ID)
	assert.Equal(t, "Salary post", first.Title)
	assert.Equal(t, "**PERSONALIA**\n\nAge: 29", first.Body)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2023, first.PublishedAt.Year())

	second := items[1]
	assert.Equal(t, "https://example.com/p/2", second.ID, "link stands in for a missing guid")
	assert.Equal(t, "plain body", second.Body)
	assert.Nil(t, second.PublishedAt)
}

func TestParse_AtomUsesUpdatedDate(t *testing.T) {
	f := NewFetcher("test-agent", time.Second, nil)

	items, err := f.Parse(atomFeed)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "tag:example.com,2023:1", items[0].ID)
	assert.Equal(t, "https://example.com/a", items[0].Link)
	assert.Equal(t, "Age: 30", items[0].Body)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, time.January, items[0].PublishedAt.Month())
}

func TestParse_Invalid(t *testing.T) {
	f := NewFetcher("test-agent", time.Second, nil)
	_, err := f.Parse("not a feed")
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	f := NewFetcher("salary-parser-test/1.0", 5*time.Second, nil)
	items, err := f.Fetch(context.Background(), "be_reddit", srv.URL)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "salary-parser-test/1.0", gotAgent)
}

func TestFetch_Throttled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	f := NewFetcher("test-agent", 5*time.Second, nil)
	f.SetRate(0.01)
	_, err := f.Fetch(context.Background(), "be_reddit", srv.URL)
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx, "be_reddit", srv.URL)
	assert.Error(t, err, "second request has to wait far past the deadline")

	f.SetRate(0)
	_, err = f.Fetch(context.Background(), "be_reddit", srv.URL)
	assert.NoError(t, err)
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewFetcher("test-agent", 5*time.Second, nil)
	_, err := f.Fetch(context.Background(), "be_reddit", srv.URL)
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "sections and lists",
			in: `<p><strong>PERSONALIA</strong></p>
<ul>
  <li>Age: 29</li>
  <li>Education: Master &amp; more</li>
</ul>
<p>Bye<br>now</p><script>alert(1)</script>`,
			want: "**PERSONALIA**\n\nAge: 29\nEducation: Master & more\n\nBye\nnow",
		},
		{
			name: "plain text is tidied only",
			in:   "Line one\n\n\n  Line two  ",
			want: "Line one\n\nLine two",
		},
		{
			name: "inline whitespace collapses",
			in:   "<div>Gross   salary:\n 3500</div><!-- hidden -->",
			want: "Gross salary: 3500",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.in))
		})
	}
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", coalesce("", "  ", "b", "c"))
	assert.Equal(t, "", coalesce("", " "))
}
