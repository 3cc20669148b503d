// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package cleanup ties the deletion of a source object to a finished copy.

🎯 Purpose:
  - A source object is only ever deleted after its copy succeeded
  - The delete runs in the background so the next copy is not held up
  - The process does not exit until every scheduled delete has finished

🔄 Flow:

	Begin(copy) ──fail──▶ error, nothing scheduled
	     │
	     ▼ ok
	  Guard ──Close()──▶ go DeleteObject ──▶ Pending
	                                           │
	                     Drain(ctx) ◀──────────┘  (blocks until empty)

A Guard is closed exactly once. Closing it again is a no-op.
*/
package cleanup
