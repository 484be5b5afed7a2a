package storage

import (
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"voc-balancer/internal/domain/entity"
)

// xmlNode произвольный XML-элемент. Храним дерево целиком, чтобы при перезаписи
// сохранились поля, которые мы не трогаем (pose, truncated, source и т.д.).
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Content string     `xml:",chardata"`
	Nodes   []*xmlNode `xml:",any"`
}

func decodeDocument(data []byte) (*xmlNode, error) {
	root := &xmlNode{}
	if err := xml.Unmarshal(data, root); err != nil {
		return nil, err
	}
	root.normalize()
	if root.XMLName.Local != "annotation" {
		return nil, errors.Errorf("unexpected root element <%s>", root.XMLName.Local)
	}
	return root, nil
}

func encodeDocument(root *xmlNode) ([]byte, error) {
	data, err := xml.MarshalIndent(root, "", "\t")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// normalize убирает пробельные символы между элементами, иначе MarshalIndent их удваивает
func (n *xmlNode) normalize() {
	n.Content = strings.TrimSpace(n.Content)
	for _, c := range n.Nodes {
		c.normalize()
	}
}

func (n *xmlNode) child(name string) *xmlNode {
	for _, c := range n.Nodes {
		if c.XMLName.Local == name {
			return c
		}
	}
	return nil
}

func (n *xmlNode) childText(name string) string {
	if c := n.child(name); c != nil {
		return c.Content
	}
	return ""
}

// setChild записывает текст дочернего элемента, создавая его при необходимости
func (n *xmlNode) setChild(name, value string) {
	if c := n.child(name); c != nil {
		c.Content = value
		return
	}
	n.Nodes = append(n.Nodes, &xmlNode{XMLName: xml.Name{Local: name}, Content: value})
}

// setExisting меняет текст элемента, только если он уже есть в разметке
func (n *xmlNode) setExisting(name, value string) {
	if c := n.child(name); c != nil {
		c.Content = value
	}
}

func (n *xmlNode) objects() []*xmlNode {
	var out []*xmlNode
	for _, c := range n.Nodes {
		if c.XMLName.Local == "object" {
			out = append(out, c)
		}
	}
	return out
}

// keepObjects оставляет только те <object>, для которых keep возвращает true
func (n *xmlNode) keepObjects(keep func(index int, obj *xmlNode) bool) {
	nodes := n.Nodes[:0]
	index := 0
	for _, c := range n.Nodes {
		if c.XMLName.Local == "object" {
			ok := keep(index, c)
			index++
			if !ok {
				continue
			}
		}
		nodes = append(nodes, c)
	}
	n.Nodes = nodes
}

// parseCoord читает координату; разметка иногда содержит дробные значения
func parseCoord(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", s)
	}
	return int(math.Round(f)), nil
}

func (n *xmlNode) intChild(name string) (int, error) {
	c := n.child(name)
	if c == nil {
		return 0, errors.Errorf("missing <%s>", name)
	}
	v, err := parseCoord(c.Content)
	if err != nil {
		return 0, errors.Wrapf(err, "<%s>", name)
	}
	return v, nil
}

func (n *xmlNode) box() (entity.Box, error) {
	bb := n.child("bndbox")
	if bb == nil {
		return entity.Box{}, errors.New("object without <bndbox>")
	}

	var (
		b   entity.Box
		err error
	)
	if b.XMin, err = bb.intChild("xmin"); err != nil {
		return b, err
	}
	if b.YMin, err = bb.intChild("ymin"); err != nil {
		return b, err
	}
	if b.XMax, err = bb.intChild("xmax"); err != nil {
		return b, err
	}
	if b.YMax, err = bb.intChild("ymax"); err != nil {
		return b, err
	}
	if !b.Valid() {
		return b, errors.Errorf("degenerate box %v", b)
	}
	return b, nil
}

func (n *xmlNode) setBox(b entity.Box) {
	bb := n.child("bndbox")
	if bb == nil {
		bb = &xmlNode{XMLName: xml.Name{Local: "bndbox"}}
		n.Nodes = append(n.Nodes, bb)
	}
	bb.setChild("xmin", strconv.Itoa(b.XMin))
	bb.setChild("ymin", strconv.Itoa(b.YMin))
	bb.setChild("xmax", strconv.Itoa(b.XMax))
	bb.setChild("ymax", strconv.Itoa(b.YMax))
}

// size читает размеры изображения из <size>
func (n *xmlNode) size() (int, int, error) {
	sz := n.child("size")
	if sz == nil {
		return 0, 0, errors.New("missing <size>")
	}
	w, err := sz.intChild("width")
	if err != nil {
		return 0, 0, err
	}
	h, err := sz.intChild("height")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func (n *xmlNode) setSize(width, height int) {
	sz := n.child("size")
	if sz == nil {
		sz = &xmlNode{XMLName: xml.Name{Local: "size"}}
		n.Nodes = append(n.Nodes, sz)
	}
	sz.setChild("width", strconv.Itoa(width))
	sz.setChild("height", strconv.Itoa(height))
}
