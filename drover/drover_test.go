package drover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeninja55/dicomautomaton-go/contour"
	"github.com/codeninja55/dicomautomaton-go/geom"
	"github.com/codeninja55/dicomautomaton-go/imagery"
	"github.com/codeninja55/dicomautomaton-go/internal/errs"
)

func testImageArray(t *testing.T) *imagery.ImageArray {
	t.Helper()
	img, err := imagery.NewPlanarImage(2, 2, 1, 1, 1, 1,
		geom.NewVector3(1, 0, 0), geom.NewVector3(0, 1, 0), geom.Vector3{}, geom.Vector3{})
	require.NoError(t, err)
	return imagery.NewImageArray(img)
}

func TestDrover_ShallowCopySharesPayloads(t *testing.T) {
	d := New()
	d.ImageArrays = append(d.ImageArrays, testImageArray(t))

	cp := d.ShallowCopy()
	*d.ImageArrays[0].Images[0].Reference(0, 0, 0) = 42

	v, _ := cp.ImageArrays[0].Images[0].Value(0, 0, 0)
	assert.Equal(t, float64(42), v, "shallow copy shares the same underlying image")
}

func TestDrover_DeepCopyIsIndependent(t *testing.T) {
	d := New()
	d.ImageArrays = append(d.ImageArrays, testImageArray(t))

	cp, err := d.DeepCopy()
	require.NoError(t, err)

	*d.ImageArrays[0].Images[0].Reference(0, 0, 0) = 42
	v, _ := cp.ImageArrays[0].Images[0].Value(0, 0, 0)
	assert.Equal(t, float64(0), v, "deep copy must not observe later mutation")
}

func TestDrover_Consume(t *testing.T) {
	d := New()
	other := New()
	other.ImageArrays = append(other.ImageArrays, testImageArray(t))

	d.Consume(other)

	assert.Len(t, d.ImageArrays, 1)
	assert.Empty(t, other.ImageArrays)
}

func TestDrover_ImageArrayByIndex_NoMatch(t *testing.T) {
	d := New()
	_, err := d.ImageArrayByIndex(0)
	require.ErrorIs(t, err, errs.ErrNoMatch)
}

func TestDrover_ContourCollectionByROIName(t *testing.T) {
	d := New()
	c := contour.NewContour(nil, true, map[string]string{"ROIName": "Body"})
	cc := contour.NewCollection(c)
	d.ContourData = contour.NewData(cc)

	got, err := d.ContourCollectionByROIName("Body")
	require.NoError(t, err)
	assert.Same(t, cc, got)

	_, err = d.ContourCollectionByROIName("Missing")
	require.ErrorIs(t, err, errs.ErrNoMatch)
}
