// seehuhn.de/go/cos - the object layer of PDF files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package content

import (
	"errors"
	"fmt"

	"seehuhn.de/go/cos"
)

var (
	// ErrUnknown is returned when an operator is not recognized.
	ErrUnknown = errors.New("unknown operator")

	// ErrVersion is returned when an operator is only available in later PDF versions.
	ErrVersion = errors.New("operator not available in PDF version")

	// ErrDeprecated is returned when an operator has been deprecated in the target PDF version.
	ErrDeprecated = errors.New("deprecated operator")
)

// Operator is a content stream operator.
//
// For the inline image operator BI, the image parameters and the image data
// found between the BI, ID and EI markers are stored in ImageParams and
// ImageData.
type Operator struct {
	Name OpName

	// Info describes the operator.  This is nil for operators which are not
	// listed in the operator table.
	Info *OpInfo

	ImageParams *cos.Dict
	ImageData   []byte
}

// IsKnown reports whether the operator is listed in the operator table.
func (o *Operator) IsKnown() bool {
	return o.Info != nil
}

// Check checks whether the operator is valid for the given PDF version.
// It returns ErrUnknown if the operator is not recognized, ErrDeprecated if
// the operator is deprecated in the given version, or ErrVersion if the
// operator was not yet available in the given version.
func (o *Operator) Check(v cos.Version) error {
	info := o.Info
	if info == nil {
		return ErrUnknown
	}

	if v < info.Since {
		return ErrVersion
	}

	if info.Deprecated != 0 && v >= info.Deprecated {
		return ErrDeprecated
	}

	return nil
}

func (o *Operator) String() string {
	if o.Name == OpBeginInlineImage {
		return fmt.Sprintf("BI <%d params, %d bytes>", o.ImageParams.Len(), len(o.ImageData))
	}
	return string(o.Name)
}

// OpInfo contains metadata about a content stream operator.
type OpInfo struct {
	Since      cos.Version // PDF version when introduced
	Deprecated cos.Version // PDF version when deprecated (0 if not deprecated)
}

// OperatorTable maps operator names to operator descriptions.
type OperatorTable interface {
	// Lookup returns the description of the named operator, or nil if the
	// operator is unknown.
	Lookup(name OpName) *OpInfo

	// InlineImageMarkers returns the names of the operators which begin an
	// inline image, begin the inline image data, and end an inline image.
	InlineImageMarkers() (begin, data, end OpName)
}

// DefaultOperators lists the content stream operators defined in PDF 2.0.
var DefaultOperators OperatorTable = operatorMap(operators)

type operatorMap map[OpName]*OpInfo

func (m operatorMap) Lookup(name OpName) *OpInfo {
	return m[name]
}

func (m operatorMap) InlineImageMarkers() (begin, data, end OpName) {
	return OpBeginInlineImage, OpInlineImageData, OpEndInlineImage
}

// operators maps operator names to their metadata
var operators = map[OpName]*OpInfo{
	// General Graphics State
	OpPushGraphicsState:    {Since: cos.V1_0},
	OpPopGraphicsState:     {Since: cos.V1_0},
	OpTransform:            {Since: cos.V1_0},
	OpSetLineWidth:         {Since: cos.V1_0},
	OpSetLineCap:           {Since: cos.V1_0},
	OpSetLineJoin:          {Since: cos.V1_0},
	OpSetMiterLimit:        {Since: cos.V1_0},
	OpSetLineDash:          {Since: cos.V1_0},
	OpSetRenderingIntent:   {Since: cos.V1_1},
	OpSetFlatnessTolerance: {Since: cos.V1_0},
	OpSetExtGState:         {Since: cos.V1_2},

	// Path Construction
	OpMoveTo:    {Since: cos.V1_0},
	OpLineTo:    {Since: cos.V1_0},
	OpCurveTo:   {Since: cos.V1_0},
	OpCurveToV:  {Since: cos.V1_0},
	OpCurveToY:  {Since: cos.V1_0},
	OpClosePath: {Since: cos.V1_0},
	OpRectangle: {Since: cos.V1_0},

	// Path Painting
	OpStroke:                    {Since: cos.V1_0},
	OpCloseAndStroke:            {Since: cos.V1_0},
	OpFill:                      {Since: cos.V1_0},
	OpFillCompat:                {Since: cos.V1_0, Deprecated: cos.V2_0},
	OpFillEvenOdd:               {Since: cos.V1_0},
	OpFillAndStroke:             {Since: cos.V1_0},
	OpFillAndStrokeEvenOdd:      {Since: cos.V1_0},
	OpCloseFillAndStroke:        {Since: cos.V1_0},
	OpCloseFillAndStrokeEvenOdd: {Since: cos.V1_0},
	OpEndPath:                   {Since: cos.V1_0},

	// Clipping Paths
	OpClipNonZero: {Since: cos.V1_0},
	OpClipEvenOdd: {Since: cos.V1_0},

	// Text Objects
	OpTextBegin: {Since: cos.V1_0},
	OpTextEnd:   {Since: cos.V1_0},

	// Text State
	OpTextSetCharacterSpacing:  {Since: cos.V1_0},
	OpTextSetWordSpacing:       {Since: cos.V1_0},
	OpTextSetHorizontalScaling: {Since: cos.V1_0},
	OpTextSetLeading:           {Since: cos.V1_0},
	OpTextSetFont:              {Since: cos.V1_0},
	OpTextSetRenderingMode:     {Since: cos.V1_0},
	OpTextSetRise:              {Since: cos.V1_0},

	// Text Positioning
	OpTextMoveOffset:           {Since: cos.V1_0},
	OpTextMoveOffsetSetLeading: {Since: cos.V1_0},
	OpTextSetMatrix:            {Since: cos.V1_0},
	OpTextNextLine:             {Since: cos.V1_0},

	// Text Showing
	OpTextShow:                       {Since: cos.V1_0},
	OpTextShowArray:                  {Since: cos.V1_0},
	OpTextShowMoveNextLine:           {Since: cos.V1_0},
	OpTextShowMoveNextLineSetSpacing: {Since: cos.V1_0},

	// Type 3 Fonts
	OpType3SetWidthOnly:           {Since: cos.V1_0},
	OpType3SetWidthAndBoundingBox: {Since: cos.V1_0},

	// Colour
	OpSetStrokeColorSpace: {Since: cos.V1_1},
	OpSetFillColorSpace:   {Since: cos.V1_1},
	OpSetStrokeColor:      {Since: cos.V1_1},
	OpSetStrokeColorN:     {Since: cos.V1_2},
	OpSetFillColor:        {Since: cos.V1_1},
	OpSetFillColorN:       {Since: cos.V1_2},
	OpSetStrokeGray:       {Since: cos.V1_0},
	OpSetFillGray:         {Since: cos.V1_0},
	OpSetStrokeRGB:        {Since: cos.V1_0},
	OpSetFillRGB:          {Since: cos.V1_0},
	OpSetStrokeCMYK:       {Since: cos.V1_0},
	OpSetFillCMYK:         {Since: cos.V1_0},

	// Shading Patterns
	OpShading: {Since: cos.V1_3},

	// Inline Images
	OpBeginInlineImage: {Since: cos.V1_0},
	OpInlineImageData:  {Since: cos.V1_0},
	OpEndInlineImage:   {Since: cos.V1_0},

	// XObjects
	OpXObject: {Since: cos.V1_0},

	// Marked Content
	OpMarkedContentPoint:               {Since: cos.V1_2},
	OpMarkedContentPointWithProperties: {Since: cos.V1_2},
	OpBeginMarkedContent:               {Since: cos.V1_2},
	OpBeginMarkedContentWithProperties: {Since: cos.V1_2},
	OpEndMarkedContent:                 {Since: cos.V1_2},

	// Compatibility
	OpBeginCompatibility: {Since: cos.V1_1},
	OpEndCompatibility:   {Since: cos.V1_1},
}
