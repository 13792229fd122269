package cellosaurus

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helaBody = `{
  "Cellosaurus": {
    "cell-line-list": [
      {
        "accession-list": [{"type": "primary", "value": "CVCL_0030"}],
        "name-list": [{"type": "identifier", "value": "HeLa"}],
        "category": "Cancer cell line",
        "sex": "Female",
        "species-list": [{"terminology": "NCBI-Taxonomy", "accession": "9606", "value": "Homo sapiens"}],
        "disease-list": [{"terminology": "NCIt", "accession": "C27677", "value": "Human papillomavirus-related cervical adenocarcinoma"}]
      }
    ]
  }
}`

func newMocked(t *testing.T) *cellosaurusImpl {
	t.Helper()
	r := New("https://api.cellosaurus.test", 5*time.Second)
	httpmock.ActivateNonDefault(Client(r))
	t.Cleanup(httpmock.DeactivateAndReset)
	return r.(*cellosaurusImpl)
}

func TestGetCellLine(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder(http.MethodGet, "https://api.cellosaurus.test/search/cell-line",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "id:HeLa", req.URL.Query().Get("q"))
			resp := httpmock.NewStringResponse(http.StatusOK, helaBody)
			resp.Header.Set("Content-Type", "application/json")
			return resp, nil
		})

	info, err := c.GetCellLine(context.Background(), " HeLa ")
	require.NoError(t, err)
	assert.Equal(t, "CVCL_0030", info.Accession)
	assert.Equal(t, "HeLa", info.Name)
	assert.Equal(t, "Female", info.Sex)
	assert.Equal(t, []string{"Homo sapiens"}, info.Species)
	assert.Len(t, info.Diseases, 1)
}

func TestGetCellLineNotFound(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder(http.MethodGet, "https://api.cellosaurus.test/search/cell-line",
		httpmock.NewStringResponder(http.StatusOK, `{"Cellosaurus":{"cell-line-list":[]}}`).
			HeaderSet(http.Header{"Content-Type": {"application/json"}}))

	_, err := c.GetCellLine(context.Background(), "NoSuchLine")
	assert.ErrorIs(t, err, code.CellLineNotFound)
}

func TestGetCellLineUpstreamError(t *testing.T) {
	c := newMocked(t)
	httpmock.RegisterResponder(http.MethodGet, "https://api.cellosaurus.test/search/cell-line",
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	_, err := c.GetCellLine(context.Background(), "HeLa")
	assert.ErrorIs(t, err, code.RPCHttpCodeErr)

	_, err = c.GetCellLine(context.Background(), "")
	assert.ErrorIs(t, err, code.ParamErr)
}
