package cache

import (
	"github.com/golang/protobuf/proto"
)

// Document is a fetched document as stored in groupcache.
type Document struct {
	URL       string `protobuf:"bytes,1,opt,name=url,proto3" json:"url,omitempty"`
	Body      []byte `protobuf:"bytes,2,opt,name=body,proto3" json:"body,omitempty"`
	FetchedAt int64  `protobuf:"varint,3,opt,name=fetched_at,json=fetchedAt,proto3" json:"fetched_at,omitempty"`
}

func (m *Document) Reset()         { *m = Document{} }
func (m *Document) String() string { return proto.CompactTextString(m) }
func (*Document) ProtoMessage()    {}
