// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package clusterservice

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExecutorGroup(t *testing.T) {
	Convey("an executor group", t, func() {
		g := newExecutorGroup("g1", 2)
		gd := ExecutorGroupDesc{Name: "g1", MinSize: 2}
		a := makeDesc("a", "host-a:25000", "10.0.0.1", true, false, gd)
		b := makeDesc("b", "host-b:25000", "10.0.0.2", true, false, gd)
		b2 := makeDesc("b2", "host-b:25001", "10.0.0.2", true, false, gd)

		Convey("starts empty and unhealthy", func() {
			So(g.NumExecutors(), ShouldEqual, 0)
			So(g.NumHosts(), ShouldEqual, 0)
			So(g.IsHealthy(), ShouldBeFalse)
		})

		Convey("tracks executors and hosts", func() {
			g.AddExecutor(a)
			g.AddExecutor(b)
			g.AddExecutor(b2)
			So(g.NumExecutors(), ShouldEqual, 3)
			So(g.NumHosts(), ShouldEqual, 2)
			So(g.IsHealthy(), ShouldBeTrue)

			Convey("iterates in address order", func() {
				all := g.AllExecutors()
				So(all, ShouldHaveLength, 3)
				So(all[0].Address, ShouldEqual, "host-a:25000")
				So(all[1].Address, ShouldEqual, "host-b:25000")
				So(all[2].Address, ShouldEqual, "host-b:25001")
			})

			Convey("looks up backends and IPs", func() {
				So(g.LookUpBackend("host-b:25000"), ShouldEqual, b)
				So(g.LookUpBackend("host-x:25000"), ShouldBeNil)

				ip, ok := g.LookUpExecutorIP("host-b")
				So(ok, ShouldBeTrue)
				So(ip, ShouldEqual, "10.0.0.2")

				// An IP that is already a member host resolves to itself.
				ip, ok = g.LookUpExecutorIP("10.0.0.1")
				So(ok, ShouldBeTrue)
				So(ip, ShouldEqual, "10.0.0.1")

				_, ok = g.LookUpExecutorIP("host-x")
				So(ok, ShouldBeFalse)
			})

			Convey("removing one of two executors on a host keeps the host", func() {
				g.RemoveExecutor(b2)
				So(g.NumExecutors(), ShouldEqual, 2)
				So(g.NumHosts(), ShouldEqual, 2)

				g.RemoveExecutor(b)
				So(g.NumHosts(), ShouldEqual, 1)
				_, ok := g.LookUpExecutorIP("host-b")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("ignores duplicate adds", func() {
			g.AddExecutor(a)
			g.AddExecutor(a)
			So(g.NumExecutors(), ShouldEqual, 1)
		})

		Convey("ignores removal of missing backends", func() {
			g.RemoveExecutor(a)
			So(g.NumExecutors(), ShouldEqual, 0)
		})

		Convey("rejects a backend with a conflicting group min size", func() {
			conflicting := makeDesc("c", "host-c:25000", "10.0.0.3", true, false,
				ExecutorGroupDesc{Name: "g1", MinSize: 5})
			g.AddExecutor(conflicting)
			So(g.NumExecutors(), ShouldEqual, 0)
		})

		Convey("clones independently", func() {
			g.AddExecutor(a)
			c := g.clone()
			c.AddExecutor(b)
			c.RemoveExecutor(a)
			So(g.NumExecutors(), ShouldEqual, 1)
			So(g.LookUpBackend("host-a:25000"), ShouldEqual, a)
			So(c.NumExecutors(), ShouldEqual, 1)
			So(c.LookUpBackend("host-b:25000"), ShouldEqual, b)
		})
	})
}
